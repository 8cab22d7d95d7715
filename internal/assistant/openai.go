package assistant

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI-backed RunService.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible providers
}

// OpenAIRunService implements RunService against the OpenAI assistants API.
// It is constructed explicitly and injected; there is no package-level client.
type OpenAIRunService struct {
	client *openai.Client
}

// NewOpenAIRunService creates a RunService backed by the OpenAI API.
func NewOpenAIRunService(cfg OpenAIConfig) *OpenAIRunService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIRunService{client: openai.NewClientWithConfig(clientCfg)}
}

func (s *OpenAIRunService) FindAssistant(ctx context.Context, name string) (string, bool, error) {
	limit := 100
	list, err := s.client.ListAssistants(ctx, &limit, nil, nil, nil)
	if err != nil {
		return "", false, fmt.Errorf("list assistants: %w", err)
	}
	for _, a := range list.Assistants {
		if a.Name != nil && *a.Name == name {
			return a.ID, true, nil
		}
	}
	return "", false, nil
}

func (s *OpenAIRunService) CreateAssistant(ctx context.Context, profile Profile) (string, error) {
	tools := make([]openai.AssistantTool, 0, len(profile.Tools))
	for _, t := range profile.Tools {
		tools = append(tools, openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	name := profile.Name
	description := profile.Description
	instructions := profile.Instructions
	created, err := s.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        profile.Model,
		Name:         &name,
		Description:  &description,
		Instructions: &instructions,
		Tools:        tools,
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	return created.ID, nil
}

func (s *OpenAIRunService) CreateThread(ctx context.Context) (string, error) {
	thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

func (s *OpenAIRunService) AppendMessage(ctx context.Context, threadID, content string) error {
	_, err := s.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (s *OpenAIRunService) StartRun(ctx context.Context, threadID, assistantID, model string) (RunState, error) {
	run, err := s.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: assistantID,
		Model:       model,
	})
	if err != nil {
		return RunState{}, fmt.Errorf("create run: %w", err)
	}
	return convertRun(run), nil
}

func (s *OpenAIRunService) PollRun(ctx context.Context, threadID, runID string) (RunState, error) {
	run, err := s.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return RunState{}, fmt.Errorf("retrieve run: %w", err)
	}
	return convertRun(run), nil
}

func (s *OpenAIRunService) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) error {
	converted := make([]openai.ToolOutput, 0, len(outputs))
	for _, out := range outputs {
		converted = append(converted, openai.ToolOutput{
			ToolCallID: out.CallID,
			Output:     out.Output,
		})
	}
	_, err := s.client.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{
		ToolOutputs: converted,
	})
	if err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}
	return nil
}

func (s *OpenAIRunService) CancelRun(ctx context.Context, threadID, runID string) error {
	if _, err := s.client.CancelRun(ctx, threadID, runID); err != nil {
		return fmt.Errorf("cancel run: %w", err)
	}
	return nil
}

func (s *OpenAIRunService) LatestMessage(ctx context.Context, threadID string) (AssistantMessage, error) {
	limit := 1
	order := "desc"
	list, err := s.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return AssistantMessage{}, fmt.Errorf("list messages: %w", err)
	}
	if len(list.Messages) == 0 {
		return AssistantMessage{}, errors.New("thread has no messages")
	}

	content := list.Messages[0].Content
	if len(content) == 0 || content[0].Type != "text" || content[0].Text == nil {
		return AssistantMessage{IsText: false}, nil
	}
	return AssistantMessage{Text: content[0].Text.Value, IsText: true}, nil
}

// convertRun maps the provider run object onto RunState. Cancelled and
// expired runs are reported as failed; the orchestrator never resumes them.
func convertRun(run openai.Run) RunState {
	state := RunState{ID: run.ID}

	switch run.Status {
	case openai.RunStatusQueued:
		state.Status = RunStatusQueued
	case openai.RunStatusInProgress:
		state.Status = RunStatusInProgress
	case openai.RunStatusCompleted:
		state.Status = RunStatusCompleted
	case openai.RunStatusRequiresAction:
		state.Status = RunStatusRequiresAction
	case openai.RunStatusFailed:
		state.Status = RunStatusFailed
	default:
		state.Status = RunStatusFailed
		state.ErrMessage = fmt.Sprintf("run entered unexpected state %q", run.Status)
	}

	if run.LastError != nil {
		state.ErrMessage = run.LastError.Message
	}

	if run.RequiredAction != nil && run.RequiredAction.SubmitToolOutputs != nil {
		for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
			state.ToolCalls = append(state.ToolCalls, ToolCallRequest{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			})
		}
	}

	return state
}
