// Package trajectory persists the conversation turns passed between stages.
package trajectory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dotcommander/frontgen/internal/extract"
)

// Stage trajectory files kept in the output directory.
const (
	PlanningFile = "planning_trajectories.json"
	AnalysisFile = "analysis_trajectories.json"
	CodingFile   = "coding_trajectories.json"
	TestingFile  = "testing_trajectories.json"
)

// MaxPriorOutputs caps how many assistant turns ExtractPriorOutputs returns.
const MaxPriorOutputs = 3

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Pair builds the user/assistant turns recorded for one model call.
func Pair(userPrompt, response string) []Turn {
	return []Turn{
		{Role: RoleUser, Content: userPrompt},
		{Role: RoleAssistant, Content: response},
	}
}

// Read returns the turns stored at path. A missing file yields no turns.
func Read(path string) ([]Turn, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading trajectory: %w", err)
	}

	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parsing trajectory %s: %w", path, err)
	}
	if turns == nil {
		turns = []Turn{}
	}
	return turns, nil
}

// Write overwrites path with turns.
func Write(path string, turns []Turn) error {
	if turns == nil {
		turns = []Turn{}
	}
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling trajectory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing trajectory: %w", err)
	}
	return nil
}

// AppendAndSave reads the turns at existingPath (none when empty or missing),
// appends newTurns and writes the result to outputPath.
func AppendAndSave(existingPath string, newTurns []Turn, outputPath string) ([]Turn, error) {
	turns := []Turn{}
	if existingPath != "" {
		existing, err := Read(existingPath)
		if err != nil {
			return nil, err
		}
		turns = existing
	}

	turns = append(turns, newTurns...)
	if err := Write(outputPath, turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// ExtractPriorOutputs returns the content of the first MaxPriorOutputs
// assistant turns at path with any reasoning prefix removed.
func ExtractPriorOutputs(path string) ([]string, error) {
	turns, err := Read(path)
	if err != nil {
		return nil, err
	}

	outputs := []string{}
	for _, turn := range turns {
		if turn.Role != RoleAssistant {
			continue
		}
		outputs = append(outputs, extract.StripReasoning(turn.Content))
		if len(outputs) == MaxPriorOutputs {
			break
		}
	}
	return outputs, nil
}
