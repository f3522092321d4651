package contentapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strconv"
)

// SutraRef addresses one sutra of one text.
type SutraRef struct {
	Upanishad string
	Chapter   int
	Number    int
}

func (r SutraRef) String() string {
	return fmt.Sprintf("%s %d.%d", r.Upanishad, r.Chapter, r.Number)
}

// basePath is the collection path for the text's sutras.
func (r SutraRef) basePath() string {
	return "/" + url.PathEscape(r.Upanishad) + "/sutras"
}

// itemPath is the path of the sutra itself, below which entries live.
func (r SutraRef) itemPath() string {
	return r.basePath() + "/" + url.PathEscape(r.Upanishad) + "/" + strconv.Itoa(r.Chapter) + "/" + strconv.Itoa(r.Number)
}

// EntryKind names a per-sutra entry endpoint.
type EntryKind string

const (
	KindTransliteration EntryKind = "transliteration"
	KindMeaning         EntryKind = "meaning"
	KindBhashyam        EntryKind = "bhashyam"
	KindInterpretation  EntryKind = "interpretation"
)

// Entry is the body of a per-sutra entry. Philosophy is omitted for kinds
// that carry none.
type Entry struct {
	Language   string `json:"language"`
	Text       string `json:"text"`
	Philosophy string `json:"philosophy,omitempty"`
}

type sutraBody struct {
	Project struct {
		Name string `json:"name"`
	} `json:"project"`
	Sutra struct {
		Chapter int    `json:"chapter"`
		Number  int    `json:"number"`
		Text    string `json:"text"`
	} `json:"sutra"`
}

// CreateSutra creates the sutra record. 200 and 201 are accepted.
func (c *Client) CreateSutra(ctx context.Context, token string, ref SutraRef, text string) (int, error) {
	var body sutraBody
	body.Project.Name = ref.Upanishad
	body.Sutra.Chapter = ref.Chapter
	body.Sutra.Number = ref.Number
	body.Sutra.Text = text

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.endpoint(ref.basePath(), nil), token, body)
	if err != nil {
		return 0, err
	}
	return c.do(req, "create sutra", nil, http.StatusOK, http.StatusCreated)
}

// AddEntry creates one entry of the given kind. 200 and 201 are accepted.
func (c *Client) AddEntry(ctx context.Context, token string, ref SutraRef, kind EntryKind, entry Entry) (int, error) {
	target := c.endpoint(ref.itemPath()+"/"+string(kind), nil)
	req, err := c.newJSONRequest(ctx, http.MethodPost, target, token, entry)
	if err != nil {
		return 0, err
	}
	return c.do(req, "create "+string(kind), nil, http.StatusOK, http.StatusCreated)
}

// AudioMode selects which recording of a sutra is uploaded.
type AudioMode string

const (
	ModeChant   AudioMode = "chant"
	ModeTeachMe AudioMode = "teach_me"
)

// AudioModes returns the upload modes in publish order.
func AudioModes() []AudioMode {
	return []AudioMode{ModeChant, ModeTeachMe}
}

// Suffix is the file-name letter used for the mode's recordings.
func (m AudioMode) Suffix() string {
	if m == ModeChant {
		return "A"
	}
	return "B"
}

// UploadAudio uploads the file at path as multipart form data. Only 201 is
// accepted.
func (c *Client) UploadAudio(ctx context.Context, token string, ref SutraRef, mode AudioMode, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open audio: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writeAudioPart(writer, file); err != nil {
		return 0, fmt.Errorf("build audio form: %w", err)
	}

	query := url.Values{}
	query.Set("mode", string(mode))
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint(ref.itemPath()+"/audio", query), token, &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req, "upload audio", nil, http.StatusCreated)
}

func writeAudioPart(writer *multipart.Writer, src io.Reader) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="audio.mp3"`)
	header.Set("Content-Type", "audio/mpeg")
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return writer.Close()
}
