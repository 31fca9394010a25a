package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sahanw/arogya-backend/internal/catalog"
	"github.com/sahanw/arogya-backend/internal/clients/classifier"
	"github.com/sahanw/arogya-backend/internal/clients/textgen"
	"github.com/sahanw/arogya-backend/internal/platform/env"
	"github.com/sahanw/arogya-backend/internal/platform/logger"
	"github.com/sahanw/arogya-backend/internal/scoring"
	"github.com/sahanw/arogya-backend/internal/services"
	"github.com/sahanw/arogya-backend/internal/timeline"
)

// batchscore runs the scoring and planning pipeline over a file of
// questionnaire submissions without a database or HTTP server. Input is
// either a JSON array of response maps or {"users": [...]}.
func main() {
	var input string
	var output string
	var offline bool
	var pretty bool
	flag.StringVar(&input, "input", "-", "submissions file, '-' for stdin")
	flag.StringVar(&output, "output", "-", "result file, '-' for stdout")
	flag.BoolVar(&offline, "offline", false, "skip external clients, use local stage estimates and fallback phases")
	flag.BoolVar(&pretty, "pretty", false, "indent the JSON output")
	flag.Parse()

	log, err := logger.New(env.GetEnv("LOG_MODE", "development", nil))
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	submissions, err := readSubmissions(input)
	if err != nil {
		fmt.Printf("read submissions: %v\n", err)
		os.Exit(1)
	}
	if len(submissions) == 0 {
		fmt.Println("no submissions in input")
		os.Exit(1)
	}

	cat, err := catalog.Default(log)
	if err != nil {
		fmt.Printf("load feature catalog: %v\n", err)
		os.Exit(1)
	}

	var stageClassifier classifier.Client
	var textgenClient textgen.Client
	if !offline {
		if c, err := classifier.NewClient(log); err != nil {
			log.Warn("Stage classifier unavailable, using local stage estimates", "error", err)
		} else {
			stageClassifier = c
		}
		if c, err := textgen.NewClient(log); err != nil {
			log.Warn("Text generation unavailable, using fallback phases", "error", err)
		} else {
			textgenClient = c
		}
	}

	assessmentService := services.NewAssessmentService(
		nil,
		scoring.NewNormalizer(),
		scoring.NewDefaultEngine(),
		scoring.NewRanker(cat),
		stageClassifier,
		nil,
		log,
	)
	plannerService := services.NewPlannerService(
		nil,
		nil,
		cat,
		timeline.NewDefaultScheduler(),
		timeline.NewAssembler(),
		textgenClient,
		log,
	)
	batchService := services.NewBatchService(assessmentService, plannerService, log)

	result, err := batchService.Process(context.Background(), submissions)
	if err != nil {
		fmt.Printf("batch process: %v\n", err)
		os.Exit(1)
	}

	if err := writeResult(output, result, pretty); err != nil {
		fmt.Printf("write result: %v\n", err)
		os.Exit(1)
	}

	log.Info("Batch scoring complete",
		"submissions", len(submissions),
		"comparisons", len(result.Comparisons),
		"personalization_rate", result.PersonalizationAnalysis.PersonalizationRate)
}

func readSubmissions(path string) ([]map[string]interface{}, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var list []map[string]interface{}
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Users []map[string]interface{} `json:"users"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("input is neither an array nor a {\"users\": [...]} object: %w", err)
	}
	return wrapped.Users, nil
}

func writeResult(path string, result interface{}, pretty bool) error {
	var raw []byte
	var err error
	if pretty {
		raw, err = json.MarshalIndent(result, "", "  ")
	} else {
		raw, err = json.Marshal(result)
	}
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(raw)
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
