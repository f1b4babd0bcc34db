package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/scribe/backend/internal/logger"
	"github.com/zhouzirui/scribe/backend/internal/metrics"
	"github.com/zhouzirui/scribe/backend/internal/model/content"
	"github.com/zhouzirui/scribe/backend/internal/upstream"
)

// SystemInstruction sets the writer persona for every generation.
const SystemInstruction = "You are a professional content writer."

// Service relays content requests to a chat model.
type Service struct {
	provider string
	chain    compose.Runnable[map[string]any, *schema.Message]
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewService compiles the prompt -> model chain around chatModel. provider
// names the backing API in failures, logs and metrics.
func NewService(ctx context.Context, chatModel model.BaseChatModel, provider string, log logger.Logger, m *metrics.Metrics) (*Service, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile content chain: %w", err)
	}

	return &Service{
		provider: provider,
		chain:    runnable,
		log:      log.With(logger.String("component", "ai"), logger.String("provider", provider)),
		metrics:  m,
	}, nil
}

// BuildInstruction renders the user message for req.
func BuildInstruction(req content.Request) string {
	return fmt.Sprintf("Write a %s about %s in approximately %d words.", req.Type, req.Topic, req.Length)
}

// Generate makes exactly one model call and returns its text unmodified.
// Any error is an *upstream.Failure.
func (s *Service) Generate(ctx context.Context, req content.Request) (content.Generated, error) {
	start := time.Now()
	response, err := s.chain.Invoke(ctx, s.buildChainInput(req))
	if err == nil && response == nil {
		err = errors.New("empty completion")
	}
	s.observe(start, err)
	if err != nil {
		s.log.Error("content generation failed", logger.Error(err))
		return content.Generated{}, upstream.Wrap(s.provider, err)
	}

	s.log.Info("content generated",
		logger.String("type", req.Type),
		logger.Int("length", req.Length),
		logger.Int("chars", len(response.Content)),
	)
	return content.Generated{Content: response.Content}, nil
}

// Stream generates like Generate but hands each non-empty delta to onDelta
// as it arrives. It returns the concatenated text. An onDelta error stops the
// stream and is returned as is; provider errors are *upstream.Failure.
func (s *Service) Stream(ctx context.Context, req content.Request, onDelta func(string) error) (content.Generated, error) {
	start := time.Now()
	stream, err := s.chain.Stream(ctx, s.buildChainInput(req))
	if err != nil {
		s.observe(start, err)
		s.log.Error("content stream failed to open", logger.Error(err))
		return content.Generated{}, upstream.Wrap(s.provider, err)
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			s.observe(start, recvErr)
			s.log.Error("content stream interrupted", logger.Error(recvErr))
			return content.Generated{}, upstream.Wrap(s.provider, recvErr)
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		builder.WriteString(chunk.Content)
		if err := onDelta(chunk.Content); err != nil {
			s.observe(start, nil)
			return content.Generated{}, err
		}
	}

	s.observe(start, nil)
	s.log.Info("content streamed", logger.String("type", req.Type), logger.Int("chars", builder.Len()))
	return content.Generated{Content: builder.String()}, nil
}

func (s *Service) buildChainInput(req content.Request) map[string]any {
	return map[string]any{
		"system": SystemInstruction,
		"query":  BuildInstruction(req),
	}
}

func (s *Service) observe(start time.Time, err error) {
	s.metrics.ObserveUpstream(s.provider, time.Since(start), err)
}
