package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"sutrasync/internal/contentapi"
	"sutrasync/internal/csvmerge"
	"sutrasync/internal/logging"
	"sutrasync/internal/scripture"
)

// Publisher sends every field of a sutra row to the content API.
type Publisher struct {
	api      API
	audioDir string
	logger   *slog.Logger
}

// NewPublisher constructs a Publisher reading recordings below audioDir.
func NewPublisher(api API, audioDir string, logger *slog.Logger) *Publisher {
	return &Publisher{api: api, audioDir: audioDir, logger: logging.NewComponentLogger(logger, "publisher")}
}

// Publish issues, in order: the sutra record, one transliteration and one
// meaning per language, the non-empty Sanskrit commentaries, one
// interpretation per language and school, and the chant and teaching audio
// uploads whose files exist. Each step is independent; failures are recorded
// and the next step runs.
func (p *Publisher) Publish(ctx context.Context, row scripture.Row, token string) RowReport {
	ref := contentapi.SutraRef{Upanishad: row.Upanishad, Chapter: row.Chapter, Number: row.SutraNo}
	report := RowReport{Line: row.Line, Ref: ref}
	ctx = logging.ContextWithSutra(ctx, ref.Upanishad, ref.Chapter, ref.Number)
	logger := logging.WithContext(ctx, p.logger)

	status, err := p.api.CreateSutra(ctx, token, ref, row.Text)
	report.record(p.outcome(logger, FieldOutcome{Kind: KindSutra}, status, err))

	for _, lang := range scripture.Languages() {
		entry := contentapi.Entry{Language: lang.String(), Text: row.Transliteration(lang)}
		report.record(p.addEntry(ctx, logger, token, ref, contentapi.KindTransliteration, entry))
	}

	for _, lang := range scripture.Languages() {
		entry := contentapi.Entry{Language: lang.String(), Text: row.Meaning(lang)}
		report.record(p.addEntry(ctx, logger, token, ref, contentapi.KindMeaning, entry))
	}

	for _, phil := range scripture.Philosophies() {
		text := row.Bhashyam(phil)
		if text == "" {
			logger.Info("bhashyam not found",
				logging.String("language", scripture.Sanskrit.String()),
				logging.String("philosophy", phil.String()),
				logging.String("school", phil.DisplayName()),
			)
			report.record(FieldOutcome{
				Kind:       string(contentapi.KindBhashyam),
				Language:   scripture.Sanskrit.String(),
				Philosophy: phil.String(),
				Status:     OutcomeSkipped,
				Detail:     "empty " + scripture.BhashyamColumn(phil),
			})
			continue
		}
		entry := contentapi.Entry{Language: scripture.Sanskrit.String(), Text: text, Philosophy: phil.String()}
		report.record(p.addEntry(ctx, logger, token, ref, contentapi.KindBhashyam, entry))
	}

	for _, lang := range scripture.Languages() {
		for _, phil := range scripture.Philosophies() {
			entry := contentapi.Entry{Language: lang.String(), Text: row.Interpretation(lang, phil), Philosophy: phil.String()}
			report.record(p.addEntry(ctx, logger, token, ref, contentapi.KindInterpretation, entry))
		}
	}

	for _, mode := range contentapi.AudioModes() {
		report.record(p.uploadAudio(ctx, logger, token, ref, mode))
	}

	totals := report.Totals()
	logger.Info("sutra published",
		logging.Int("created", totals.Created),
		logging.Int("failed", totals.Failed),
		logging.Int("skipped", totals.Skipped),
	)
	return report
}

func (p *Publisher) addEntry(ctx context.Context, logger *slog.Logger, token string, ref contentapi.SutraRef, kind contentapi.EntryKind, entry contentapi.Entry) FieldOutcome {
	status, err := p.api.AddEntry(ctx, token, ref, kind, entry)
	return p.outcome(logger, FieldOutcome{
		Kind:       string(kind),
		Language:   entry.Language,
		Philosophy: entry.Philosophy,
	}, status, err)
}

func (p *Publisher) uploadAudio(ctx context.Context, logger *slog.Logger, token string, ref contentapi.SutraRef, mode contentapi.AudioMode) FieldOutcome {
	outcome := FieldOutcome{Kind: KindAudio, Mode: string(mode)}
	path := AudioPath(p.audioDir, ref, mode)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		detail := "audio file not found: " + path
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			detail = fmt.Sprintf("audio file unreadable: %v", err)
		}
		logger.Info("audio file not found", logging.String("mode", string(mode)), logging.String("path", path))
		outcome.Status = OutcomeSkipped
		outcome.Detail = detail
		return outcome
	}
	status, err := p.api.UploadAudio(ctx, token, ref, mode, path)
	return p.outcome(logger, outcome, status, err)
}

func (p *Publisher) outcome(logger *slog.Logger, outcome FieldOutcome, status int, err error) FieldOutcome {
	outcome.StatusCode = status
	if err != nil {
		outcome.Status = OutcomeFailed
		outcome.Detail = err.Error()
		logging.WarnWithContext(logger, "create failed", "publish_field_failed",
			logging.String("field", outcome.Label()),
			logging.Int("status_code", status),
			logging.Error(err),
			logging.String(logging.FieldImpact, "field missing on the content API until the next run"),
		)
		return outcome
	}
	outcome.Status = OutcomeCreated
	logger.Debug("created", logging.String("field", outcome.Label()), logging.Int("status_code", status))
	return outcome
}

// AudioPath returns where the recording for ref and mode is expected:
// <audioDir>/<upanishad>/[<chapter>/]<sutra>_<A|B>.mp3. The chapter directory
// is omitted for the single-chapter passthrough text.
func AudioPath(audioDir string, ref contentapi.SutraRef, mode contentapi.AudioMode) string {
	file := strconv.Itoa(ref.Number) + "_" + mode.Suffix() + ".mp3"
	if ref.Upanishad == csvmerge.PassthroughSource {
		return filepath.Join(audioDir, ref.Upanishad, file)
	}
	return filepath.Join(audioDir, ref.Upanishad, strconv.Itoa(ref.Chapter), file)
}
