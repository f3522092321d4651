package publish_test

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"sutrasync/internal/contentapi"
	"sutrasync/internal/logging"
	"sutrasync/internal/publish"
	"sutrasync/internal/scripture"
	"sutrasync/internal/testsupport"
)

func ishaRow(extra map[string]string) scripture.Row {
	values := map[string]string{
		"name":               "isha",
		"chapter":            "2",
		"sutra_no":           "5",
		"sutra":              "ईशा वास्यमिदं सर्वं",
		"transliteration_en": "isha vasyam idam sarvam",
		"bhashyam_sa_adv":    "commentary",
	}
	for k, v := range extra {
		values[k] = v
	}
	return scripture.NewRow(values, scripture.Defaults{})
}

func TestPublishIssuesFullSequence(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	audioDir := t.TempDir()
	testsupport.WriteAudio(t, audioDir, "isha", 2, 5, contentapi.ModeChant, false)

	publisher := publish.NewPublisher(api.Client(t), audioDir, logging.NewNop())
	report := publisher.Publish(context.Background(), ishaRow(nil), "tok")

	if got := api.Count(http.MethodPost, "/isha/sutras"); got != 1 {
		t.Fatalf("expected 1 sutra create, got %d", got)
	}
	checks := map[string]int{
		"/transliteration": 6,
		"/meaning":         6,
		"/bhashyam":        1,
		"/interpretation":  18,
		"/audio":           1,
	}
	for suffix, want := range checks {
		if got := api.Count(http.MethodPost, suffix); got != want {
			t.Errorf("expected %d calls to %s, got %d", want, suffix, got)
		}
	}
	if got := len(api.Requests()); got != 1+6+6+1+18+1 {
		t.Fatalf("unexpected request total %d", got)
	}

	totals := report.Totals()
	if totals.Created != 33 || totals.Skipped != 3 || totals.Failed != 0 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if len(report.Outcomes) != 1+6+6+3+18+2 {
		t.Fatalf("expected one outcome per step, got %d", len(report.Outcomes))
	}
	if report.Ref != (contentapi.SutraRef{Upanishad: "isha", Chapter: 2, Number: 5}) {
		t.Fatalf("unexpected ref %+v", report.Ref)
	}
}

func TestPublishOrderAndPayloads(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	publisher := publish.NewPublisher(api.Client(t), t.TempDir(), logging.NewNop())
	publisher.Publish(context.Background(), ishaRow(nil), "tok")

	requests := api.Requests()
	if requests[0].Path != "/isha/sutras" {
		t.Fatalf("expected sutra first, got %s", requests[0].Path)
	}
	sutra := requests[0].JSON(t)["sutra"].(map[string]any)
	if sutra["chapter"].(float64) != 2 || sutra["number"].(float64) != 5 {
		t.Fatalf("unexpected sutra body %v", sutra)
	}
	if requests[0].Authorization != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", requests[0].Authorization)
	}

	langs := scripture.Languages()
	for i, lang := range langs {
		req := requests[1+i]
		if req.Path != "/isha/sutras/isha/2/5/transliteration" {
			t.Fatalf("request %d: unexpected path %s", 1+i, req.Path)
		}
		if req.JSON(t)["language"] != lang.String() {
			t.Fatalf("expected languages in declared order, got %v at %d", req.JSON(t)["language"], i)
		}
	}

	meaning := requests[1+6].JSON(t)
	if text, ok := meaning["text"]; !ok || text != "" {
		t.Fatalf("expected empty meaning text to be sent, got %v", meaning)
	}

	bhashyam := api.Matching(http.MethodPost, "/bhashyam")[0].JSON(t)
	if bhashyam["language"] != "sa" || bhashyam["philosophy"] != "adv" || bhashyam["text"] != "commentary" {
		t.Fatalf("unexpected bhashyam body %v", bhashyam)
	}

	interpretations := api.Matching(http.MethodPost, "/interpretation")
	first := interpretations[0].JSON(t)
	last := interpretations[len(interpretations)-1].JSON(t)
	if first["language"] != "sa" || first["philosophy"] != "adv" || last["language"] != "hi" || last["philosophy"] != "vis" {
		t.Fatalf("unexpected interpretation order: first %v last %v", first, last)
	}
	if text, ok := first["text"]; !ok || text != "" {
		t.Fatalf("expected empty interpretation text to be sent, got %v", first)
	}
}

func TestPublishSkipsEmptyBhashyam(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	publisher := publish.NewPublisher(api.Client(t), t.TempDir(), logging.NewNop())
	report := publisher.Publish(context.Background(), ishaRow(map[string]string{"bhashyam_sa_adv": ""}), "tok")

	if got := api.Count(http.MethodPost, "/bhashyam"); got != 0 {
		t.Fatalf("expected no bhashyam calls, got %d", got)
	}
	skipped := 0
	for _, o := range report.Outcomes {
		if o.Kind == "bhashyam" && o.Status == publish.OutcomeSkipped {
			skipped++
		}
	}
	if skipped != 3 {
		t.Fatalf("expected 3 skipped bhashyam outcomes, got %d", skipped)
	}
}

func TestPublishMissingAudioMakesNoCall(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	publisher := publish.NewPublisher(api.Client(t), filepath.Join(t.TempDir(), "none"), logging.NewNop())
	report := publisher.Publish(context.Background(), ishaRow(nil), "tok")

	if got := api.Count(http.MethodPost, "/audio"); got != 0 {
		t.Fatalf("expected no audio calls, got %d", got)
	}
	for _, o := range report.Outcomes {
		if o.Kind == publish.KindAudio && (o.Status != publish.OutcomeSkipped || !strings.Contains(o.Detail, "not found")) {
			t.Fatalf("expected skipped audio outcome, got %+v", o)
		}
	}
	if report.Totals().Failed != 0 {
		t.Fatalf("missing audio is not a failure: %+v", report.Totals())
	}
}

func TestPublishAudioPathIncludesChapterExceptIsha(t *testing.T) {
	api := testsupport.NewFakeAPI(t)
	audioDir := t.TempDir()
	testsupport.WriteAudio(t, audioDir, "kena", 3, 4, contentapi.ModeTeachMe, true)
	testsupport.WriteAudio(t, audioDir, "kena", 3, 4, contentapi.ModeChant, false)

	row := scripture.NewRow(map[string]string{"name": "kena", "chapter": "3", "sutra_no": "4"}, scripture.Defaults{})
	publish.NewPublisher(api.Client(t), audioDir, logging.NewNop()).Publish(context.Background(), row, "tok")

	uploads := api.Matching(http.MethodPost, "/audio")
	if len(uploads) != 1 {
		t.Fatalf("expected only the chaptered teach_me file to upload, got %d", len(uploads))
	}
	if uploads[0].Path != "/kena/sutras/kena/3/4/audio" || uploads[0].Query != "mode=teach_me" {
		t.Fatalf("unexpected upload target %s?%s", uploads[0].Path, uploads[0].Query)
	}
	if !strings.HasPrefix(uploads[0].ContentType, "multipart/form-data") {
		t.Fatalf("expected multipart upload, got %q", uploads[0].ContentType)
	}
}

func TestAudioPath(t *testing.T) {
	tests := []struct {
		ref  contentapi.SutraRef
		mode contentapi.AudioMode
		want string
	}{
		{contentapi.SutraRef{Upanishad: "isha", Chapter: 0, Number: 5}, contentapi.ModeChant, filepath.Join("audio", "isha", "5_A.mp3")},
		{contentapi.SutraRef{Upanishad: "kena", Chapter: 2, Number: 5}, contentapi.ModeTeachMe, filepath.Join("audio", "kena", "2", "5_B.mp3")},
	}
	for _, tt := range tests {
		if got := publish.AudioPath("audio", tt.ref, tt.mode); got != tt.want {
			t.Errorf("AudioPath(%+v, %s) = %q, want %q", tt.ref, tt.mode, got, tt.want)
		}
	}
}

func TestPublishFieldFailureContinues(t *testing.T) {
	api := testsupport.NewFakeAPI(t, testsupport.WithStatusFunc(func(method, path string) int {
		if strings.HasSuffix(path, "/meaning") {
			return http.StatusInternalServerError
		}
		if path == "/isha/sutras" {
			return http.StatusOK
		}
		return 0
	}))
	report := publish.NewPublisher(api.Client(t), t.TempDir(), logging.NewNop()).Publish(context.Background(), ishaRow(nil), "tok")

	totals := report.Totals()
	if totals.Failed != 6 {
		t.Fatalf("expected 6 failed meanings, got %+v", totals)
	}
	if got := api.Count(http.MethodPost, "/interpretation"); got != 18 {
		t.Fatalf("expected publishing to continue after failures, got %d interpretations", got)
	}
	for _, failure := range report.Failures() {
		if failure.Kind != "meaning" || failure.StatusCode != http.StatusInternalServerError || !strings.Contains(failure.Detail, "rejected by fake") {
			t.Fatalf("unexpected failure %+v", failure)
		}
	}
	if report.Outcomes[0].Status != publish.OutcomeCreated || report.Outcomes[0].StatusCode != http.StatusOK {
		t.Fatalf("expected 200 to count as created, got %+v", report.Outcomes[0])
	}
}

func TestPublishSendsCellTextUnchanged(t *testing.T) {
	// U+0958 has no composed NFC form; the request must carry it as read.
	text := "\u0958\u0959 \u0931"
	csv := "name,chapter,sutra_no,sutra,meaning_sa\nkena,1,2," + text + "," + text + "\n"
	rows, err := scripture.ReadRows(strings.NewReader(csv), scripture.Defaults{})
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}

	api := testsupport.NewFakeAPI(t)
	publisher := publish.NewPublisher(api.Client(t), t.TempDir(), logging.NewNop())
	publisher.Publish(context.Background(), rows[0], "tok")

	create := api.Matching(http.MethodPost, "/kena/sutras")[0]
	if !strings.Contains(string(create.Body), text) {
		t.Fatalf("expected raw sutra bytes in body, got %q", create.Body)
	}
	if got := create.JSON(t)["sutra"].(map[string]any)["text"]; got != text {
		t.Fatalf("sutra text changed: got %+q, want %+q", got, text)
	}
	meaning := api.Matching(http.MethodPost, "/meaning")[0].JSON(t)
	if meaning["language"] != "sa" || meaning["text"] != text {
		t.Fatalf("meaning text changed: %v", meaning)
	}
}

func TestFieldOutcomeLabel(t *testing.T) {
	tests := []struct {
		outcome publish.FieldOutcome
		want    string
	}{
		{publish.FieldOutcome{Kind: "sutra"}, "sutra"},
		{publish.FieldOutcome{Kind: "meaning", Language: "kn"}, "meaning kn"},
		{publish.FieldOutcome{Kind: "interpretation", Language: "ta", Philosophy: "dva"}, "interpretation ta/dva"},
		{publish.FieldOutcome{Kind: "audio", Mode: "chant"}, "audio chant"},
	}
	for _, tt := range tests {
		if got := tt.outcome.Label(); got != tt.want {
			t.Errorf("Label() = %q, want %q", got, tt.want)
		}
	}
}

func TestFieldOutcomeDisplayLabel(t *testing.T) {
	tests := []struct {
		outcome publish.FieldOutcome
		want    string
	}{
		{publish.FieldOutcome{Kind: "sutra"}, "sutra"},
		{publish.FieldOutcome{Kind: "meaning", Language: "kn"}, "meaning Kannada"},
		{publish.FieldOutcome{Kind: "interpretation", Language: "ta", Philosophy: "dva"}, "interpretation Tamil/Dvaita"},
		{publish.FieldOutcome{Kind: "bhashyam", Language: "sa", Philosophy: "vis"}, "bhashyam Sanskrit/Vishishtadvaita"},
		{publish.FieldOutcome{Kind: "audio", Mode: "chant"}, "audio chant"},
	}
	for _, tt := range tests {
		if got := tt.outcome.DisplayLabel(); got != tt.want {
			t.Errorf("DisplayLabel() = %q, want %q", got, tt.want)
		}
	}
}
