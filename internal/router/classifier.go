package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/expensed-ai/expensed/internal/model"
)

// ClassifyInput describes the observable features of one request.
type ClassifyInput struct {
	Text     string
	FileName string
	Hint     model.TaskType
	FileSize int64
}

var (
	imageExtRe = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp|gif)$`)
	lineItemRe = regexp.MustCompile(`(?i)tax|discount|subtotal|line item`)
)

// largeImageBytes is the threshold above which an image is assumed to be a
// multi-page scan.
const largeImageBytes = 500 * 1024

// ClassifyTask scores a request's complexity from independent additive
// signals and maps it to a task type. An explicit hint is authoritative: it
// short-circuits scoring entirely and returns a fixed 0.5. The score is a
// deliberately crude linear model with no normalization; it can exceed 1.0.
func ClassifyTask(input ClassifyInput) model.TaskComplexity {
	if input.Hint != "" {
		return model.TaskComplexity{
			Type:    input.Hint,
			Score:   0.5,
			Signals: []string{"User-specified task type"},
		}
	}

	var signals []string
	var score float64

	if strings.HasSuffix(strings.ToLower(input.FileName), ".csv") {
		signals = append(signals, "CSV file detected")
		score += 0.3
		if input.Text != "" {
			rowCount := len(strings.Split(input.Text, "\n"))
			if rowCount > 20 {
				score += 0.3
				signals = append(signals, fmt.Sprintf("%d rows", rowCount))
			}
		}
	}

	if input.FileName != "" && imageExtRe.MatchString(input.FileName) {
		signals = append(signals, "Image receipt")
		score += 0.1
		if input.FileSize > largeImageBytes {
			score += 0.4
			signals = append(signals, "Large image, likely multi-page")
		}
	}

	if input.Text != "" {
		lineCount := len(strings.Split(input.Text, "\n"))
		if lineCount > 15 {
			score += 0.3
			signals = append(signals, fmt.Sprintf("%d lines of text", lineCount))
		}
		if lineItemRe.MatchString(input.Text) {
			score += 0.2
			signals = append(signals, "Complex line items detected")
		}
	}

	taskType := model.TaskComplexExtraction
	if score < 0.3 {
		taskType = model.TaskSimpleExtraction
	}

	return model.TaskComplexity{Type: taskType, Score: score, Signals: signals}
}
