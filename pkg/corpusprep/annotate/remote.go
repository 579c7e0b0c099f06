package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/edulang/corpusprep/internal/llm"
)

// Annotation column names produced by the remote classifier.
const (
	ColumnTopic     = "topic"
	ColumnEducation = "education"
)

// DefaultTopics is the controlled topic vocabulary.
var DefaultTopics = []string{
	"Arts & Humanities",
	"History & Archaeology",
	"Social Sciences",
	"Mathematics",
	"Physical Sciences",
	"Children entertainment",
	"Computer Science",
	"Engineering & Technology",
	"Life Sciences",
	"Health & Medicine",
	"Education Studies",
	"Business & Finance",
	"Law & Legal Studies",
	"Environmental Science & Sustainability",
	"Languages & Linguistics",
	"Daily Routines & Home Management",
	"Family & Interpersonal Relationships",
	"Hobbies, Leisure & Entertainment",
	"Personal Health, Wellness & Lifestyle",
	"Work Life & Career",
	"Consumer Experiences & Personal Finance",
	"Personal Journeys & Life Events",
	"Food & Culinary",
}

// DefaultEducationLevels is the controlled education-level vocabulary.
var DefaultEducationLevels = []string{
	"primary school",
	"middle school",
	"high school",
	"university degree",
	"PhD degree",
}

// RemoteConfig configures a RemoteAnnotator. Credentials are injected
// explicitly; the annotator never reads the environment.
type RemoteConfig struct {
	BaseURL string
	APIKey  string
	Model   string

	Topics          []string // defaults to DefaultTopics
	EducationLevels []string // defaults to DefaultEducationLevels

	MaxTextLen     int           // truncate texts longer than this, default 15000
	MaxAttempts    int           // total attempt budget per record, default 3
	InitialBackoff time.Duration // default 200ms, doubled per attempt
	MaxBackoff     time.Duration // default 5s

	HTTPClient *http.Client
}

// RemoteAnnotator classifies text into a topic and an education level via a
// chat-completion endpoint. Transient failures are retried with exponential
// backoff up to the attempt budget; permanent failures are not retried.
// Either way a failing record degrades to Unknown instead of aborting the
// run, and the degraded count is available afterwards.
type RemoteAnnotator struct {
	cfg      RemoteConfig
	client   *llm.Client
	topics   map[string]struct{}
	levels   map[string]struct{}
	degraded atomic.Int64
}

// NewRemote builds a RemoteAnnotator, applying defaults for unset fields.
func NewRemote(cfg RemoteConfig) *RemoteAnnotator {
	if len(cfg.Topics) == 0 {
		cfg.Topics = DefaultTopics
	}
	if len(cfg.EducationLevels) == 0 {
		cfg.EducationLevels = DefaultEducationLevels
	}
	if cfg.MaxTextLen <= 0 {
		cfg.MaxTextLen = 15000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	r := &RemoteAnnotator{
		cfg: cfg,
		client: &llm.Client{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			HTTPClient: cfg.HTTPClient,
		},
		topics: make(map[string]struct{}, len(cfg.Topics)),
		levels: make(map[string]struct{}, len(cfg.EducationLevels)),
	}
	for _, t := range cfg.Topics {
		r.topics[t] = struct{}{}
	}
	for _, l := range cfg.EducationLevels {
		r.levels[l] = struct{}{}
	}
	return r
}

// Name returns the annotator's stage name.
func (r *RemoteAnnotator) Name() string { return "remote" }

// Degraded returns how many records fell back to Unknown so far.
func (r *RemoteAnnotator) Degraded() int64 { return r.degraded.Load() }

// Annotate classifies one text. The returned error is non-nil only for
// context cancellation; classification failures degrade the record instead.
func (r *RemoteAnnotator) Annotate(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return unknownResult(), nil
	}
	if len(text) > r.cfg.MaxTextLen {
		text = text[:r.cfg.MaxTextLen] + "..."
	}

	delay := r.cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		out, err := r.client.Chat(ctx, systemPrompt, r.userPrompt(text))
		if err == nil {
			var res Result
			if res, err = r.parse(out); err == nil {
				return res, nil
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !isTransient(err) || attempt == r.cfg.MaxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		delay *= 2
		if delay > r.cfg.MaxBackoff {
			delay = r.cfg.MaxBackoff
		}
	}
	r.degraded.Add(1)
	return unknownResult(), nil
}

// isTransient separates failures worth retrying (timeouts, rate limits,
// server errors, garbled responses) from permanent ones (bad credentials,
// malformed request).
func isTransient(err error) bool {
	var se *llm.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusRequestTimeout ||
			se.Code == http.StatusTooManyRequests ||
			se.Code >= 500
	}
	return true
}

const systemPrompt = "You are a strict text classifier. " +
	"Respond with a single JSON object and nothing else."

func (r *RemoteAnnotator) userPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze the following text and determine its primary topic ")
	b.WriteString("and the education level typically required to understand it.\n\n")
	fmt.Fprintf(&b, "Text:\n%q\n\n", text)
	fmt.Fprintf(&b, "Choose the single best topic from: %s\n", strings.Join(r.cfg.Topics, "; "))
	fmt.Fprintf(&b, "Choose the single best education level from: %s\n", strings.Join(r.cfg.EducationLevels, "; "))
	b.WriteString(`Answer ONLY with JSON of the form {"topic": "...", "education": "..."}.`)
	return b.String()
}

func (r *RemoteAnnotator) parse(out string) (Result, error) {
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	out = strings.TrimSpace(out)

	var payload struct {
		Topic     string `json:"topic"`
		Education string `json:"education"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		return nil, fmt.Errorf("parse classification: %w", err)
	}
	res := Result{ColumnTopic: payload.Topic, ColumnEducation: payload.Education}
	if _, ok := r.topics[payload.Topic]; !ok {
		res[ColumnTopic] = Unknown
	}
	if _, ok := r.levels[payload.Education]; !ok {
		res[ColumnEducation] = Unknown
	}
	return res, nil
}

func unknownResult() Result {
	return Result{ColumnTopic: Unknown, ColumnEducation: Unknown}
}
