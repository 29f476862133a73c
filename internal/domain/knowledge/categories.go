package knowledge

// Category tables shared by the engine (question labelling) and any reporting
// consumer. Codes absent from a table fall back to CategoryUncategorized.

const (
	CategoryMoodEmotional = "mood_emotional"
	CategoryCognitive     = "cognitive"
	CategoryPhysical      = "physical"
	CategoryBehavioral    = "behavioral"
	CategoryTraumaRelated = "trauma_related"
	CategoryUncategorized = "uncategorized"
	DisorderAnxiety       = "anxiety"
	DisorderMood          = "mood"
	DisorderPsychotic     = "psychotic"
	DisorderObsessive     = "obsessive"
	DisorderTrauma        = "trauma"
	DisorderEating        = "eating"
)

var symptomCategories = map[string]string{
	"G1":  CategoryMoodEmotional,
	"G2":  CategoryMoodEmotional,
	"G3":  CategoryMoodEmotional,
	"G4":  CategoryMoodEmotional,
	"G5":  CategoryMoodEmotional,
	"G6":  CategoryMoodEmotional,
	"G7":  CategoryCognitive,
	"G8":  CategoryCognitive,
	"G9":  CategoryCognitive,
	"G10": CategoryCognitive,
	"G11": CategoryCognitive,
	"G12": CategoryPhysical,
	"G13": CategoryPhysical,
	"G14": CategoryPhysical,
	"G15": CategoryPhysical,
	"G16": CategoryPhysical,
	"G17": CategoryPhysical,
	"G18": CategoryBehavioral,
	"G19": CategoryBehavioral,
	"G20": CategoryBehavioral,
	"G21": CategoryBehavioral,
	"G22": CategoryBehavioral,
	"G23": CategoryBehavioral,
	"G24": CategoryTraumaRelated,
	"G25": CategoryTraumaRelated,
	"G26": CategoryTraumaRelated,
	"G27": CategoryTraumaRelated,
}

var disorderCategories = map[string]string{
	"P1": DisorderAnxiety,
	"P2": DisorderAnxiety,
	"P3": DisorderMood,
	"P4": DisorderMood,
	"P5": DisorderPsychotic,
	"P6": DisorderObsessive,
	"P7": DisorderTrauma,
	"P8": DisorderEating,
	"P9": DisorderEating,
}

func SymptomCategory(code string) string {
	if c, ok := symptomCategories[NormalizeCode(code)]; ok {
		return c
	}
	return CategoryUncategorized
}

func DisorderCategory(code string) string {
	if c, ok := disorderCategories[NormalizeCode(code)]; ok {
		return c
	}
	return CategoryUncategorized
}

// SymptomCategoryTable returns a copy of the symptom code to category table.
func SymptomCategoryTable() map[string]string {
	return copyTable(symptomCategories)
}

// DisorderCategoryTable returns a copy of the disorder code to category table.
func DisorderCategoryTable() map[string]string {
	return copyTable(disorderCategories)
}

func copyTable(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
