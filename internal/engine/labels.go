package engine

import "fmt"

// ClassNames is the fixed pathology vocabulary, in the order the model was
// trained with. Class IDs index into this list.
var ClassNames = []string{
	"eardrum_perforation",
	"atresia",
	"atrophic_scar",
	"blood_clot",
	"cerumen",
	"foreign_body",
	"middle_ear_effusion",
	"middle_ear_tumor",
	"otitis_externa",
	"otomycosis",
	"retraction",
	"tympanosclerosis",
	"ventilation_tube",
	"otitis_media",
	"tympanoplasty",
	"EAC_tumor",
	"myringitis",
	"normal",
}

// ClassName returns the label for a class ID, falling back to a synthetic
// name for IDs outside the vocabulary.
func ClassName(id int) string {
	if id >= 0 && id < len(ClassNames) {
		return ClassNames[id]
	}
	return fmt.Sprintf("class_%d", id)
}
