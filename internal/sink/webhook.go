package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/verte-zerg/digita/internal/model"
)

const (
	maxDetails = 10000
	maxText    = 5000
	maxWPM     = 500
)

// payloadSchema mirrors the limits the receiving flow enforces.
const payloadSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["nome", "email", "matricula", "tipo_teste", "nivel", "velocidade_wpm",
		"precisao_percentual", "tempo_total_segundos", "erros_total", "erros_detalhados",
		"texto_referencia", "texto_digitado", "data_teste"],
	"properties": {
		"nome": {"type": "string", "minLength": 2, "maxLength": 100},
		"email": {"type": "string", "format": "email", "maxLength": 255},
		"matricula": {"type": "string", "pattern": "^[0-9]{4,11}$"},
		"tipo_teste": {"enum": ["texto", "audio"]},
		"nivel": {"enum": ["facil", "medio", "dificil"]},
		"velocidade_wpm": {"type": "integer", "minimum": 0, "maximum": 500},
		"precisao_percentual": {"type": "integer", "minimum": 0, "maximum": 100},
		"tempo_total_segundos": {"type": "integer", "minimum": 0},
		"erros_total": {"type": "integer", "minimum": 0},
		"erros_detalhados": {"type": "string", "maxLength": 10000},
		"texto_referencia": {"type": "string", "maxLength": 5000},
		"texto_digitado": {"type": "string", "maxLength": 5000},
		"data_teste": {"type": "string", "format": "date-time"}
	}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error

	eventHandler = regexp.MustCompile(`(?i)on\w+=`)
	jsScheme     = regexp.MustCompile(`(?i)javascript:`)
)

// Payload is the JSON body posted to the webhook.
type Payload struct {
	Nome               string `json:"nome"`
	Email              string `json:"email"`
	Matricula          string `json:"matricula"`
	TipoTeste          string `json:"tipo_teste"`
	Nivel              string `json:"nivel"`
	VelocidadeWPM      int    `json:"velocidade_wpm"`
	PrecisaoPercentual int    `json:"precisao_percentual"`
	TempoTotalSegundos int    `json:"tempo_total_segundos"`
	ErrosTotal         int    `json:"erros_total"`
	ErrosDetalhados    string `json:"erros_detalhados"`
	TextoReferencia    string `json:"texto_referencia"`
	TextoDigitado      string `json:"texto_digitado"`
	DataTeste          string `json:"data_teste"`
}

type errorDetail struct {
	Tipo     string `json:"tipo"`
	Posicao  int    `json:"posicao"`
	Erro     string `json:"erro"`
	Sugestao string `json:"sugestao"`
	Contexto string `json:"contexto"`
}

// BuildPayload converts a submission into a sanitized payload.
func BuildPayload(sub model.Submission) Payload {
	a := sub.Attempt
	return Payload{
		Nome:               Sanitize(sub.User.Name),
		Email:              Sanitize(sub.User.Email),
		Matricula:          digits(sub.User.Identifier()),
		TipoTeste:          string(a.Mode),
		Nivel:              string(a.Difficulty),
		VelocidadeWPM:      min(a.WPM, maxWPM),
		PrecisaoPercentual: a.Accuracy,
		TempoTotalSegundos: a.ElapsedSeconds,
		ErrosTotal:         len(a.Errors),
		ErrosDetalhados:    details(a.Errors),
		TextoReferencia:    truncate(Sanitize(a.Reference.Body), maxText),
		TextoDigitado:      truncate(Sanitize(a.TypedText), maxText),
		DataTeste:          a.EndedAt.UTC().Format(time.RFC3339),
	}
}

// Sanitize strips markup characters, script schemes and inline event handlers.
func Sanitize(s string) string {
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = jsScheme.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ValidatePayload checks an encoded payload against the schema.
func ValidatePayload(body []byte) error {
	schema, err := payloadValidator()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func payloadValidator() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(payloadSchema))
		if err != nil {
			schemaErr = fmt.Errorf("parse payload schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		c.AssertFormat()
		if err := c.AddResource("schema://result.json", doc); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile("schema://result.json")
	})
	return compiledSchema, schemaErr
}

// WebhookSink posts each submission as JSON to a URL.
type WebhookSink struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// Deliver implements Sink.
func (w *WebhookSink) Deliver(ctx context.Context, sub model.Submission) error {
	body, err := json.Marshal(BuildPayload(sub))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := ValidatePayload(body); err != nil {
		return fmt.Errorf("invalid result payload: %w", err)
	}

	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post result: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// details encodes errors as a JSON list, keeping the longest prefix that fits
// the field limit.
func details(errs []model.TextError) string {
	list := make([]errorDetail, 0, len(errs))
	for _, e := range errs {
		list = append(list, errorDetail{
			Tipo:     string(e.Kind),
			Posicao:  e.Position,
			Erro:     Sanitize(e.Error),
			Sugestao: Sanitize(e.Suggestion),
			Contexto: e.Context,
		})
	}
	encode := func(n int) []byte {
		data, err := json.Marshal(list[:n])
		if err != nil {
			return []byte("[]")
		}
		return data
	}
	if data := encode(len(list)); utf8.RuneCount(data) <= maxDetails {
		return string(data)
	}
	n := sort.Search(len(list)+1, func(n int) bool {
		return utf8.RuneCount(encode(n)) > maxDetails
	})
	return string(encode(n - 1))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
