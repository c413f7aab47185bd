package patient

import (
	"fmt"
	"strings"
)

// Sex of the patient.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
)

// ChestPainType is the reported chest pain category.
type ChestPainType string

const (
	ChestPainTypicalAngina  ChestPainType = "TypicalAngina"
	ChestPainAtypicalAngina ChestPainType = "AtypicalAngina"
	ChestPainNonAnginal     ChestPainType = "NonAnginalPain"
	ChestPainAsymptomatic   ChestPainType = "Asymptomatic"
)

// RestingECG is the resting electrocardiographic result.
type RestingECG string

const (
	RestingECGNormal         RestingECG = "Normal"
	RestingECGSTTAbnormality RestingECG = "STTWaveAbnormality"
	RestingECGLVHypertrophy  RestingECG = "LVHypertrophy"
)

// ExerciseAngina reports exercise induced angina.
type ExerciseAngina string

const (
	ExerciseAnginaYes ExerciseAngina = "Yes"
	ExerciseAnginaNo  ExerciseAngina = "No"
)

// STSlope is the slope of the peak exercise ST segment.
type STSlope string

const (
	STSlopeUpsloping   STSlope = "Upsloping"
	STSlopeFlat        STSlope = "Flat"
	STSlopeDownsloping STSlope = "Downsloping"
)

// Thalassemia result. Codes start at 1, matching the encoding the model was trained on.
type Thalassemia string

const (
	ThalassemiaNormal           Thalassemia = "Normal"
	ThalassemiaFixedDefect      Thalassemia = "FixedDefect"
	ThalassemiaReversibleDefect Thalassemia = "ReversibleDefect"
)

// Option is a single select option rendered by the form.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

var (
	sexOptions = []Option{
		{string(SexMale), "Male"},
		{string(SexFemale), "Female"},
	}

	chestPainOptions = []Option{
		{string(ChestPainTypicalAngina), "Typical Angina"},
		{string(ChestPainAtypicalAngina), "Atypical Angina"},
		{string(ChestPainNonAnginal), "Non-anginal Pain"},
		{string(ChestPainAsymptomatic), "Asymptomatic"},
	}

	restingECGOptions = []Option{
		{string(RestingECGNormal), "Normal"},
		{string(RestingECGSTTAbnormality), "ST-T Wave Abnormality"},
		{string(RestingECGLVHypertrophy), "Left Ventricular Hypertrophy"},
	}

	exerciseAnginaOptions = []Option{
		{string(ExerciseAnginaNo), "No"},
		{string(ExerciseAnginaYes), "Yes"},
	}

	stSlopeOptions = []Option{
		{string(STSlopeUpsloping), "Upsloping"},
		{string(STSlopeFlat), "Flat"},
		{string(STSlopeDownsloping), "Downsloping"},
	}

	thalassemiaOptions = []Option{
		{string(ThalassemiaNormal), "Normal"},
		{string(ThalassemiaFixedDefect), "Fixed Defect"},
		{string(ThalassemiaReversibleDefect), "Reversible Defect"},
	}
)

// Code returns the numeric code for the value or ErrInvalidCategory.
func (s Sex) Code() (int, error) {
	switch s {
	case SexMale:
		return 1, nil
	case SexFemale:
		return 0, nil
	}
	return 0, invalidCategory("sex", string(s))
}

func (c ChestPainType) Code() (int, error) {
	switch c {
	case ChestPainTypicalAngina:
		return 0, nil
	case ChestPainAtypicalAngina:
		return 1, nil
	case ChestPainNonAnginal:
		return 2, nil
	case ChestPainAsymptomatic:
		return 3, nil
	}
	return 0, invalidCategory("chest_pain_type", string(c))
}

func (r RestingECG) Code() (int, error) {
	switch r {
	case RestingECGNormal:
		return 0, nil
	case RestingECGSTTAbnormality:
		return 1, nil
	case RestingECGLVHypertrophy:
		return 2, nil
	}
	return 0, invalidCategory("resting_ecg", string(r))
}

func (e ExerciseAngina) Code() (int, error) {
	switch e {
	case ExerciseAnginaYes:
		return 1, nil
	case ExerciseAnginaNo:
		return 0, nil
	}
	return 0, invalidCategory("exercise_angina", string(e))
}

func (s STSlope) Code() (int, error) {
	switch s {
	case STSlopeUpsloping:
		return 0, nil
	case STSlopeFlat:
		return 1, nil
	case STSlopeDownsloping:
		return 2, nil
	}
	return 0, invalidCategory("st_slope", string(s))
}

func (t Thalassemia) Code() (int, error) {
	switch t {
	case ThalassemiaNormal:
		return 1, nil
	case ThalassemiaFixedDefect:
		return 2, nil
	case ThalassemiaReversibleDefect:
		return 3, nil
	}
	return 0, invalidCategory("thalassemia", string(t))
}

// ParseSex resolves a canonical or display label, case-insensitively.
func ParseSex(v string) (Sex, error) {
	s, err := parseLabel("sex", v, sexOptions)
	return Sex(s), err
}

func ParseChestPainType(v string) (ChestPainType, error) {
	s, err := parseLabel("chest_pain_type", v, chestPainOptions)
	return ChestPainType(s), err
}

func ParseRestingECG(v string) (RestingECG, error) {
	s, err := parseLabel("resting_ecg", v, restingECGOptions)
	return RestingECG(s), err
}

func ParseExerciseAngina(v string) (ExerciseAngina, error) {
	s, err := parseLabel("exercise_angina", v, exerciseAnginaOptions)
	return ExerciseAngina(s), err
}

func ParseSTSlope(v string) (STSlope, error) {
	s, err := parseLabel("st_slope", v, stSlopeOptions)
	return STSlope(s), err
}

func ParseThalassemia(v string) (Thalassemia, error) {
	s, err := parseLabel("thalassemia", v, thalassemiaOptions)
	return Thalassemia(s), err
}

func parseLabel(field, v string, opts []Option) (string, error) {
	v = strings.TrimSpace(v)
	for _, o := range opts {
		if strings.EqualFold(v, o.Value) || strings.EqualFold(v, o.Label) {
			return o.Value, nil
		}
	}
	return "", invalidCategory(field, v)
}

func invalidCategory(field, v string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidCategory, field, v)
}

// Choices lists the select options for every categorical field, keyed by form field name.
func Choices() map[string][]Option {
	return map[string][]Option{
		FieldSex:            sexOptions,
		FieldChestPainType:  chestPainOptions,
		FieldRestingECG:     restingECGOptions,
		FieldExerciseAngina: exerciseAnginaOptions,
		FieldSTSlope:        stSlopeOptions,
		FieldThalassemia:    thalassemiaOptions,
		FieldFastingBloodSugar: {
			{"false", "False"},
			{"true", "True"},
		},
		FieldMajorVessels: {
			{"0", "0"}, {"1", "1"}, {"2", "2"}, {"3", "3"},
		},
	}
}
