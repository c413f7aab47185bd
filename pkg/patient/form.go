package patient

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Form field names.
const (
	FieldName              = "name"
	FieldAge               = "age"
	FieldSex               = "sex"
	FieldChestPainType     = "chest_pain_type"
	FieldRestingBP         = "resting_bp"
	FieldCholesterol       = "cholesterol"
	FieldFastingBloodSugar = "fasting_blood_sugar"
	FieldRestingECG        = "resting_ecg"
	FieldMaxHeartRate      = "max_heart_rate"
	FieldExerciseAngina    = "exercise_angina"
	FieldSTDepression      = "st_depression"
	FieldSTSlope           = "st_slope"
	FieldMajorVessels      = "major_vessels"
	FieldThalassemia       = "thalassemia"
)

// ParseForm builds an Input from submitted form values. Categorical fields
// accept canonical values or display labels. The result is not range checked;
// Encode does that.
func ParseForm(v url.Values) (*Input, error) {
	in := &Input{
		Name: strings.TrimSpace(v.Get(FieldName)),
	}

	var err error
	if in.Age, err = formInt(v, FieldAge); err != nil {
		return nil, err
	}
	if in.Sex, err = ParseSex(v.Get(FieldSex)); err != nil {
		return nil, err
	}
	if in.ChestPainType, err = ParseChestPainType(v.Get(FieldChestPainType)); err != nil {
		return nil, err
	}
	if in.RestingBP, err = formInt(v, FieldRestingBP); err != nil {
		return nil, err
	}
	if in.Cholesterol, err = formInt(v, FieldCholesterol); err != nil {
		return nil, err
	}
	if in.FastingBloodSugarHigh, err = formBool(v, FieldFastingBloodSugar); err != nil {
		return nil, err
	}
	if in.RestingECG, err = ParseRestingECG(v.Get(FieldRestingECG)); err != nil {
		return nil, err
	}
	if in.MaxHeartRate, err = formInt(v, FieldMaxHeartRate); err != nil {
		return nil, err
	}
	if in.ExerciseAngina, err = ParseExerciseAngina(v.Get(FieldExerciseAngina)); err != nil {
		return nil, err
	}
	if in.STDepression, err = formTenths(v, FieldSTDepression); err != nil {
		return nil, err
	}
	if in.STSlope, err = ParseSTSlope(v.Get(FieldSTSlope)); err != nil {
		return nil, err
	}
	if in.MajorVessels, err = formVessels(v); err != nil {
		return nil, err
	}
	if in.Thalassemia, err = ParseThalassemia(v.Get(FieldThalassemia)); err != nil {
		return nil, err
	}
	return in, nil
}

// Values is the inverse of ParseForm, used to re-populate the form.
func (in *Input) Values() url.Values {
	v := url.Values{}
	v.Set(FieldName, in.Name)
	v.Set(FieldAge, strconv.Itoa(in.Age))
	v.Set(FieldSex, string(in.Sex))
	v.Set(FieldChestPainType, string(in.ChestPainType))
	v.Set(FieldRestingBP, strconv.Itoa(in.RestingBP))
	v.Set(FieldCholesterol, strconv.Itoa(in.Cholesterol))
	v.Set(FieldFastingBloodSugar, strconv.FormatBool(in.FastingBloodSugarHigh))
	v.Set(FieldRestingECG, string(in.RestingECG))
	v.Set(FieldMaxHeartRate, strconv.Itoa(in.MaxHeartRate))
	v.Set(FieldExerciseAngina, string(in.ExerciseAngina))
	v.Set(FieldSTDepression, strconv.FormatFloat(in.STDepression, 'f', 1, 64))
	v.Set(FieldSTSlope, string(in.STSlope))
	v.Set(FieldMajorVessels, strconv.Itoa(in.MajorVessels))
	v.Set(FieldThalassemia, string(in.Thalassemia))
	return v
}

func formInt(v url.Values, field string) (int, error) {
	s := strings.TrimSpace(v.Get(field))
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, field, s)
	}
	return i, nil
}

// formTenths parses a float rounded to one decimal place.
func formTenths(v url.Values, field string) (float64, error) {
	s := strings.TrimSpace(v.Get(field))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, field, s)
	}
	return RoundTenths(f), nil
}

func formBool(v url.Values, field string) (bool, error) {
	s := strings.TrimSpace(v.Get(field))
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrInvalidCategory, field, s)
	}
	return b, nil
}

// formVessels treats the vessel count as a select, so anything but 0-3 is a category error.
func formVessels(v url.Values) (int, error) {
	s := strings.TrimSpace(v.Get(FieldMajorVessels))
	switch s {
	case "0", "1", "2", "3":
		return strconv.Atoi(s)
	}
	return 0, fmt.Errorf("%w: %s=%q", ErrInvalidCategory, FieldMajorVessels, s)
}
