package patient

import (
	"errors"
	"fmt"
	"math"
)

// FeatureCount is the length of the vector the classifier expects.
const FeatureCount = 13

const (
	AgeMin          = 1
	AgeMax          = 100
	RestingBPMin    = 0
	RestingBPMax    = 300
	CholesterolMin  = 0
	CholesterolMax  = 600
	MaxHeartRateMin = 0
	MaxHeartRateMax = 300
	STDepressionMin = 0.0
	STDepressionMax = 10.0
	MajorVesselsMin = 0
	MajorVesselsMax = 3
)

var (
	// ErrInvalidCategory is returned when a categorical field is outside its enumerated set.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrOutOfRange is returned when a numeric field is outside its documented range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidNumber is returned when a numeric form value cannot be parsed.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrMissingField is returned when a submitted record omits a clinical field.
	ErrMissingField = errors.New("missing field")

	// FeatureNames are the training-time feature names in vector order.
	FeatureNames = [FeatureCount]string{
		"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
		"thalach", "exang", "oldpeak", "slope", "ca", "thal",
	}
)

// Vector is the fixed-order numeric feature vector.
type Vector [FeatureCount]float64

// Slice returns a copy of the vector as a slice.
func (v Vector) Slice() []float64 {
	s := make([]float64, FeatureCount)
	copy(s, v[:])
	return s
}

// Input is one form submission. Name is only used to address the verdict
// and never reaches the classifier. Documents are decoded through Record.
type Input struct {
	Name                  string
	Age                   int
	Sex                   Sex
	ChestPainType         ChestPainType
	RestingBP             int
	Cholesterol           int
	FastingBloodSugarHigh bool
	RestingECG            RestingECG
	MaxHeartRate          int
	ExerciseAngina        ExerciseAngina
	STDepression          float64
	STSlope               STSlope
	MajorVessels          int
	Thalassemia           Thalassemia
}

// Default returns the values the form is pre-filled with.
func Default() *Input {
	return &Input{
		Age:            25,
		Sex:            SexMale,
		ChestPainType:  ChestPainTypicalAngina,
		RestingBP:      120,
		Cholesterol:    200,
		RestingECG:     RestingECGNormal,
		MaxHeartRate:   150,
		ExerciseAngina: ExerciseAnginaNo,
		STDepression:   0.0,
		STSlope:        STSlopeUpsloping,
		MajorVessels:   0,
		Thalassemia:    ThalassemiaNormal,
	}
}

// IsInvalid reports whether err describes a rejected input rather than a system failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrOutOfRange) ||
		errors.Is(err, ErrInvalidNumber) ||
		errors.Is(err, ErrMissingField)
}

// Normalize resolves display labels (e.g. "Fixed Defect") in categorical
// fields to their canonical values and rounds STDepression to tenths.
func (in *Input) Normalize() (*Input, error) {
	if in == nil {
		return nil, errors.New("input required")
	}

	out := *in
	out.STDepression = RoundTenths(in.STDepression)
	var err error
	if out.Sex, err = ParseSex(string(in.Sex)); err != nil {
		return nil, err
	}
	if out.ChestPainType, err = ParseChestPainType(string(in.ChestPainType)); err != nil {
		return nil, err
	}
	if out.RestingECG, err = ParseRestingECG(string(in.RestingECG)); err != nil {
		return nil, err
	}
	if out.ExerciseAngina, err = ParseExerciseAngina(string(in.ExerciseAngina)); err != nil {
		return nil, err
	}
	if out.STSlope, err = ParseSTSlope(string(in.STSlope)); err != nil {
		return nil, err
	}
	if out.Thalassemia, err = ParseThalassemia(string(in.Thalassemia)); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks every numeric field against its documented range.
func (in *Input) Validate() error {
	if in == nil {
		return errors.New("input required")
	}
	if err := checkRange(FieldAge, float64(in.Age), AgeMin, AgeMax); err != nil {
		return err
	}
	if err := checkRange(FieldRestingBP, float64(in.RestingBP), RestingBPMin, RestingBPMax); err != nil {
		return err
	}
	if err := checkRange(FieldCholesterol, float64(in.Cholesterol), CholesterolMin, CholesterolMax); err != nil {
		return err
	}
	if err := checkRange(FieldMaxHeartRate, float64(in.MaxHeartRate), MaxHeartRateMin, MaxHeartRateMax); err != nil {
		return err
	}
	if math.IsNaN(in.STDepression) {
		return fmt.Errorf("%w: %s is not a number", ErrInvalidNumber, FieldSTDepression)
	}
	if err := checkRange(FieldSTDepression, RoundTenths(in.STDepression), STDepressionMin, STDepressionMax); err != nil {
		return err
	}
	// vessel count is an enumerated answer, not a measurement
	if in.MajorVessels < MajorVesselsMin || in.MajorVessels > MajorVesselsMax {
		return fmt.Errorf("%w: %s=%d", ErrInvalidCategory, FieldMajorVessels, in.MajorVessels)
	}
	return nil
}

// RoundTenths rounds to the one decimal place the classifier was trained on.
func RoundTenths(f float64) float64 {
	return math.Round(f*10) / 10
}

func checkRange(field string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s=%v must be between %v and %v", ErrOutOfRange, field, v, lo, hi)
	}
	return nil
}

// Encode validates the input and maps it to the classifier's feature vector.
// Position i always holds FeatureNames[i].
func Encode(in *Input) (Vector, error) {
	var v Vector
	if err := in.Validate(); err != nil {
		return v, err
	}

	sex, err := in.Sex.Code()
	if err != nil {
		return v, err
	}
	cp, err := in.ChestPainType.Code()
	if err != nil {
		return v, err
	}
	ecg, err := in.RestingECG.Code()
	if err != nil {
		return v, err
	}
	exang, err := in.ExerciseAngina.Code()
	if err != nil {
		return v, err
	}
	slope, err := in.STSlope.Code()
	if err != nil {
		return v, err
	}
	thal, err := in.Thalassemia.Code()
	if err != nil {
		return v, err
	}

	v[0] = float64(in.Age)
	v[1] = float64(sex)
	v[2] = float64(cp)
	v[3] = float64(in.RestingBP)
	v[4] = float64(in.Cholesterol)
	v[5] = boolCode(in.FastingBloodSugarHigh)
	v[6] = float64(ecg)
	v[7] = float64(in.MaxHeartRate)
	v[8] = float64(exang)
	v[9] = RoundTenths(in.STDepression)
	v[10] = float64(slope)
	v[11] = float64(in.MajorVessels)
	v[12] = float64(thal)
	return v, nil
}

func boolCode(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
