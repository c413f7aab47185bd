package patient

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioForm() url.Values {
	return url.Values{
		FieldName:              {"  Jane  "},
		FieldAge:               {"63"},
		FieldSex:               {"Male"},
		FieldChestPainType:     {"Typical Angina"},
		FieldRestingBP:         {"145"},
		FieldCholesterol:       {"233"},
		FieldFastingBloodSugar: {"True"},
		FieldRestingECG:        {"Normal"},
		FieldMaxHeartRate:      {"150"},
		FieldExerciseAngina:    {"No"},
		FieldSTDepression:      {"2.3"},
		FieldSTSlope:           {"Downsloping"},
		FieldMajorVessels:      {"0"},
		FieldThalassemia:       {"Fixed Defect"},
	}
}

func TestParseForm(t *testing.T) {
	in, err := ParseForm(scenarioForm())
	require.NoError(t, err)
	assert.Equal(t, "Jane", in.Name)

	v, err := Encode(in)
	require.NoError(t, err)
	assert.Equal(t, Vector{63, 1, 0, 145, 233, 1, 0, 150, 0, 2.3, 2, 0, 2}, v)
}

func TestParseForm_RoundsTenths(t *testing.T) {
	f := scenarioForm()
	f.Set(FieldSTDepression, "2.34")
	in, err := ParseForm(f)
	require.NoError(t, err)
	assert.Equal(t, 2.3, in.STDepression)
}

func TestParseForm_Errors(t *testing.T) {
	tests := []struct {
		field string
		value string
		want  error
	}{
		{FieldAge, "abc", ErrInvalidNumber},
		{FieldAge, "", ErrInvalidNumber},
		{FieldSTDepression, "NaN", ErrInvalidNumber},
		{FieldSex, "Unknown", ErrInvalidCategory},
		{FieldFastingBloodSugar, "maybe", ErrInvalidCategory},
		{FieldMajorVessels, "4", ErrInvalidCategory},
		{FieldThalassemia, "Broken", ErrInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			f := scenarioForm()
			f.Set(tt.field, tt.value)
			_, err := ParseForm(f)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValues_RoundTrip(t *testing.T) {
	in := scenarioInput()
	in.Name = "Sam"
	out, err := ParseForm(in.Values())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestChoices(t *testing.T) {
	c := Choices()
	assert.Len(t, c[FieldChestPainType], 4)
	assert.Len(t, c[FieldThalassemia], 3)
	assert.Len(t, c[FieldMajorVessels], 4)

	for field, opts := range c {
		for _, o := range opts {
			f := scenarioForm()
			f.Set(field, o.Value)
			_, err := ParseForm(f)
			assert.NoError(t, err, "%s=%s", field, o.Value)
		}
	}
}
