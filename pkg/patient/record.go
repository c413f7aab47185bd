package patient

import (
	"fmt"
	"strings"
)

// Record is the JSON and YAML form of Input. Clinical fields are pointers so
// an omitted field is told apart from a zero measurement.
type Record struct {
	Name                  *string         `json:"name,omitempty" yaml:"name,omitempty"`
	Age                   *int            `json:"age" yaml:"age"`
	Sex                   *Sex            `json:"sex" yaml:"sex"`
	ChestPainType         *ChestPainType  `json:"chest_pain_type" yaml:"chest_pain_type"`
	RestingBP             *int            `json:"resting_bp" yaml:"resting_bp"`
	Cholesterol           *int            `json:"cholesterol" yaml:"cholesterol"`
	FastingBloodSugarHigh *bool           `json:"fasting_blood_sugar_high" yaml:"fasting_blood_sugar_high"`
	RestingECG            *RestingECG     `json:"resting_ecg" yaml:"resting_ecg"`
	MaxHeartRate          *int            `json:"max_heart_rate" yaml:"max_heart_rate"`
	ExerciseAngina        *ExerciseAngina `json:"exercise_angina" yaml:"exercise_angina"`
	STDepression          *float64        `json:"st_depression" yaml:"st_depression"`
	STSlope               *STSlope        `json:"st_slope" yaml:"st_slope"`
	MajorVessels          *int            `json:"major_vessels" yaml:"major_vessels"`
	Thalassemia           *Thalassemia    `json:"thalassemia" yaml:"thalassemia"`
}

// Input returns the record as an Input. Every field except Name must be
// present; the error names all that are not.
func (r *Record) Input() (*Input, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty record", ErrMissingField)
	}

	var missing []string
	in := &Input{}

	if r.Name != nil {
		in.Name = strings.TrimSpace(*r.Name)
	}
	take(&missing, "age", r.Age, &in.Age)
	take(&missing, "sex", r.Sex, &in.Sex)
	take(&missing, "chest_pain_type", r.ChestPainType, &in.ChestPainType)
	take(&missing, "resting_bp", r.RestingBP, &in.RestingBP)
	take(&missing, "cholesterol", r.Cholesterol, &in.Cholesterol)
	take(&missing, "fasting_blood_sugar_high", r.FastingBloodSugarHigh, &in.FastingBloodSugarHigh)
	take(&missing, "resting_ecg", r.RestingECG, &in.RestingECG)
	take(&missing, "max_heart_rate", r.MaxHeartRate, &in.MaxHeartRate)
	take(&missing, "exercise_angina", r.ExerciseAngina, &in.ExerciseAngina)
	take(&missing, "st_depression", r.STDepression, &in.STDepression)
	take(&missing, "st_slope", r.STSlope, &in.STSlope)
	take(&missing, "major_vessels", r.MajorVessels, &in.MajorVessels)
	take(&missing, "thalassemia", r.Thalassemia, &in.Thalassemia)

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return in, nil
}

func take[T any](missing *[]string, key string, src *T, dst *T) {
	if src == nil {
		*missing = append(*missing, key)
		return
	}
	*dst = *src
}
