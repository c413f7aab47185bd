package predict

// Verdict is the rendered classifier decision.
type Verdict string

const (
	NoDiseaseDetected Verdict = "NoDiseaseDetected"
	DiseaseDetected   Verdict = "DiseaseDetected"
)

// Render maps a classifier output to a verdict: 0 is no disease, anything else is disease.
func Render(outcome int) Verdict {
	if outcome == 0 {
		return NoDiseaseDetected
	}
	return DiseaseDetected
}

// Detected reports whether the verdict is positive.
func (v Verdict) Detected() bool {
	return v == DiseaseDetected
}

// Label is the human readable form of the verdict.
func (v Verdict) Label() string {
	if v.Detected() {
		return "Heart disease detected"
	}
	return "No heart disease detected"
}

var tips = []string{
	"Maintain a heart-healthy diet rich in fruits, vegetables, whole grains, and lean proteins.",
	"Exercise regularly, aiming for at least 150 minutes of moderate-intensity activity per week.",
	"Manage stress through relaxation techniques like meditation or deep breathing exercises.",
	"Quit smoking and limit alcohol consumption.",
	"Monitor your blood pressure and cholesterol levels regularly.",
}

// Tips returns the heart health tips shown with every verdict.
func Tips() []string {
	return append([]string(nil), tips...)
}

// Message addresses the verdict to the patient.
func Message(name string, v Verdict) string {
	if name == "" {
		name = "patient"
	}
	if v.Detected() {
		return "Dear " + name + ", heart disease detected."
	}
	return "Dear " + name + ", no heart disease detected."
}

// Advice is the follow-up line shown under the message.
func Advice(v Verdict) string {
	if v.Detected() {
		return "Please consult a cardiologist for proper evaluation and management."
	}
	return "Stay healthy and take care!"
}
