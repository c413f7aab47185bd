package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/cardiocheck/pkg/patient"
	"github.com/urfave/cli/v3"
)

var (
	inputFileFlag = &cli.StringFlag{
		Name:  "file",
		Usage: "YAML or JSON file with the patient input (field flags are ignored when set)",
	}

	defaultInput = patient.Default()

	predictCmd = &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Predict heart disease for a single patient",
		UsageText: `cardiocheck predict --age 63 --sex Male --chest-pain "Typical Angina" --resting-bp 145 \
     --cholesterol 233 --fasting-blood-sugar --max-heart-rate 150 --st-depression 2.3 \
     --st-slope Downsloping --thalassemia "Fixed Defect"
   cardiocheck predict --file patient.yaml`,
		Action: cmdPredict,
		Flags: []cli.Flag{
			inputFileFlag,
			&cli.StringFlag{Name: patient.FieldName, Usage: "Patient name"},
			&cli.IntFlag{Name: "age", Value: defaultInput.Age, Usage: "Age [1-100]"},
			&cli.StringFlag{Name: "sex", Value: string(defaultInput.Sex), Usage: "Male or Female"},
			&cli.StringFlag{Name: "chest-pain", Value: string(defaultInput.ChestPainType), Usage: "Chest pain type"},
			&cli.IntFlag{Name: "resting-bp", Value: defaultInput.RestingBP, Usage: "Resting blood pressure (mm Hg) [0-300]"},
			&cli.IntFlag{Name: "cholesterol", Value: defaultInput.Cholesterol, Usage: "Cholesterol level (mg/dl) [0-600]"},
			&cli.BoolFlag{Name: "fasting-blood-sugar", Usage: "Fasting blood sugar > 120 mg/dl"},
			&cli.StringFlag{Name: "resting-ecg", Value: string(defaultInput.RestingECG), Usage: "Resting ECG result"},
			&cli.IntFlag{Name: "max-heart-rate", Value: defaultInput.MaxHeartRate, Usage: "Maximum heart rate achieved [0-300]"},
			&cli.StringFlag{Name: "exercise-angina", Value: string(defaultInput.ExerciseAngina), Usage: "Yes or No"},
			&cli.FloatFlag{Name: "st-depression", Value: defaultInput.STDepression, Usage: "ST depression induced by exercise [0.0-10.0]"},
			&cli.StringFlag{Name: "st-slope", Value: string(defaultInput.STSlope), Usage: "Slope of the peak exercise ST segment"},
			&cli.IntFlag{Name: "major-vessels", Value: defaultInput.MajorVessels, Usage: "Major vessels colored by fluoroscopy [0-3]"},
			&cli.StringFlag{Name: "thalassemia", Value: string(defaultInput.Thalassemia), Usage: "Thalassemia result"},
		},
	}
)

func inputFromFlags(cmd *cli.Command) *patient.Input {
	return &patient.Input{
		Name:                  cmd.String(patient.FieldName),
		Age:                   int(cmd.Int("age")),
		Sex:                   patient.Sex(cmd.String("sex")),
		ChestPainType:         patient.ChestPainType(cmd.String("chest-pain")),
		RestingBP:             int(cmd.Int("resting-bp")),
		Cholesterol:           int(cmd.Int("cholesterol")),
		FastingBloodSugarHigh: cmd.Bool("fasting-blood-sugar"),
		RestingECG:            patient.RestingECG(cmd.String("resting-ecg")),
		MaxHeartRate:          int(cmd.Int("max-heart-rate")),
		ExerciseAngina:        patient.ExerciseAngina(cmd.String("exercise-angina")),
		STDepression:          cmd.Float("st-depression"),
		STSlope:               patient.STSlope(cmd.String("st-slope")),
		MajorVessels:          int(cmd.Int("major-vessels")),
		Thalassemia:           patient.Thalassemia(cmd.String("thalassemia")),
	}
}

func cmdPredict(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	in := inputFromFlags(cmd)
	if path := cmd.String(inputFileFlag.Name); path != "" {
		var rec patient.Record
		if err := readFile(path, &rec); err != nil {
			return err
		}
		var err error
		if in, err = rec.Input(); err != nil {
			return fmt.Errorf("invalid input: %w", err)
		}
	}

	in, err := in.Normalize()
	if err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	p, err := loadPredictor(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	res, err := p.Predict(ctx, in)
	if err != nil {
		return fmt.Errorf("predicting: %w", err)
	}

	return encode(writer(cmd), cfg.Format, res)
}
