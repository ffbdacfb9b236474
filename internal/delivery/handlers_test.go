package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/voxbridge/internal/artifacts"
	"github.com/Vovarama1992/voxbridge/internal/domain"
	"github.com/Vovarama1992/voxbridge/internal/pipeline"
	"github.com/Vovarama1992/voxbridge/internal/ports"
	"github.com/Vovarama1992/voxbridge/internal/speech"
	"github.com/Vovarama1992/voxbridge/internal/translation"
)

type fakeSTT struct {
	text string
	lang string
	err  error
}

func (f fakeSTT) Transcribe(ctx context.Context, filePath, hint string) (speech.Transcription, error) {
	return speech.Transcription{Text: f.text, Language: f.lang}, f.err
}

type fakeTranslator struct {
	mu    sync.Mutex
	calls [][3]string
	out   string
	err   error
}

func (f *fakeTranslator) Translate(ctx context.Context, text, src, tgt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, [3]string{text, src, tgt})
	f.mu.Unlock()
	return f.out, f.err
}

type fakeTTS struct {
	audio []byte
	err   error
}

func (f fakeTTS) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	return f.audio, f.err
}

type fakeHistory struct {
	enabled bool
	records []ports.TranslationRecord
	gotUser int64
}

func (f *fakeHistory) Record(rec ports.TranslationRecord) {}

func (f *fakeHistory) History(ctx context.Context, userID int64, limit int) ([]ports.TranslationRecord, error) {
	f.gotUser = userID
	return f.records, nil
}

func (f *fakeHistory) Enabled() bool { return f.enabled }

type testEnv struct {
	srv     *httptest.Server
	store   *artifacts.Store
	tr      *fakeTranslator
	history *fakeHistory
	auth    *domain.AuthService
}

func newTestEnv(t *testing.T, stt fakeSTT, tr *fakeTranslator, tts fakeTTS) *testEnv {
	t.Helper()

	store, err := artifacts.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	sp := speech.NewService(stt, tts)
	orch := pipeline.NewOrchestrator(sp, translation.NewService(tr), sp, store, nil, nil, t.TempDir())
	zl := logger.NewZapLogger(zap.NewNop().Sugar())
	hist := &fakeHistory{}
	auth := domain.NewAuthService("test-secret")

	r := chi.NewRouter()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	RegisterRoutes(
		r,
		NewTranslateHandler(orch, zl, 5*time.Second, 1<<20, srv.URL),
		NewAudioHandler(store, zl),
		NewHistoryHandler(hist, zl),
		auth,
		0,
	)

	return &testEnv{srv: srv, store: store, tr: tr, history: hist, auth: auth}
}

func multipartBody(t *testing.T, audio []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if audio != nil {
		fw, err := mw.CreateFormFile("audio", "clip.webm")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(audio)
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func postAudio(t *testing.T, env *testEnv, audio []byte, fields map[string]string) (*http.Response, map[string]string) {
	t.Helper()

	body, ct := multipartBody(t, audio, fields)
	resp, err := http.Post(env.srv.URL+"/api/audio-to-audio", ct, body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	out := map[string]string{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp, out
}

func TestAudioToAudioHelloAuto(t *testing.T) {
	tr := &fakeTranslator{out: "Hola, ¿cómo estás?"}
	env := newTestEnv(t, fakeSTT{text: "Hello", lang: "english"}, tr, fakeTTS{audio: []byte("mp3-bytes")})

	resp, out := postAudio(t, env, []byte("webm"), map[string]string{"sourceLang": "auto", "targetLang": "spa_Latn"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}

	if out["status"] != "success" {
		t.Fatalf("status field = %q", out["status"])
	}
	if out["originalText"] != "Hello" {
		t.Fatalf("originalText = %q", out["originalText"])
	}
	if out["translatedText"] != "Hola" {
		t.Fatalf("translatedText = %q", out["translatedText"])
	}
	if tr.calls[0][0] != "Hello, how are you?" {
		t.Fatalf("engine input = %q", tr.calls[0][0])
	}
	if out["detectedLang"] != "eng_Latn" {
		t.Fatalf("detectedLang = %q", out["detectedLang"])
	}
	if !strings.HasPrefix(out["audioUrl"], env.srv.URL+"/api/audio/") {
		t.Fatalf("audioUrl = %q", out["audioUrl"])
	}

	got, err := http.Get(out["audioUrl"])
	if err != nil {
		t.Fatal(err)
	}
	defer got.Body.Close()
	data, _ := io.ReadAll(got.Body)

	if got.StatusCode != http.StatusOK {
		t.Fatalf("retrieval status = %d", got.StatusCode)
	}
	if ct := got.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Fatalf("content type = %q", ct)
	}
	if string(data) != "mp3-bytes" {
		t.Fatalf("body = %q", data)
	}
}

func TestAudioToAudioDefaults(t *testing.T) {
	tr := &fakeTranslator{out: "Buenos días"}
	env := newTestEnv(t, fakeSTT{text: "Good morning", lang: "english"}, tr, fakeTTS{audio: []byte("x")})

	resp, _ := postAudio(t, env, []byte("webm"), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if len(tr.calls) != 1 {
		t.Fatalf("translator calls = %d", len(tr.calls))
	}
	if c := tr.calls[0]; c[1] != "eng_Latn" || c[2] != "spa_Latn" {
		t.Fatalf("languages = %v", c)
	}
}

func TestAudioToAudioNoFile(t *testing.T) {
	env := newTestEnv(t, fakeSTT{text: "hi"}, &fakeTranslator{out: "x"}, fakeTTS{audio: []byte("x")})

	resp, out := postAudio(t, env, nil, map[string]string{"targetLang": "fra_Latn"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["error"] != "No audio file provided" {
		t.Fatalf("error = %q", out["error"])
	}
}

func TestAudioToAudioNotMultipart(t *testing.T) {
	env := newTestEnv(t, fakeSTT{text: "hi"}, &fakeTranslator{out: "x"}, fakeTTS{audio: []byte("x")})

	resp, err := http.Post(env.srv.URL+"/api/audio-to-audio", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAudioToAudioEmptyFile(t *testing.T) {
	env := newTestEnv(t, fakeSTT{text: "hi"}, &fakeTranslator{out: "x"}, fakeTTS{audio: []byte("x")})

	resp, out := postAudio(t, env, []byte{}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}
	if env.store.Len() != 0 {
		t.Fatalf("store has %d artifacts", env.store.Len())
	}
}

func TestAudioToAudioTooLarge(t *testing.T) {
	env := newTestEnv(t, fakeSTT{text: "hi"}, &fakeTranslator{out: "x"}, fakeTTS{audio: []byte("x")})

	resp, out := postAudio(t, env, bytes.Repeat([]byte("a"), 2<<20), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, body %v", resp.StatusCode, out)
	}
	if out["error"] != "Audio file too large" {
		t.Fatalf("error = %q", out["error"])
	}
	if env.store.Len() != 0 {
		t.Fatalf("store has %d artifacts", env.store.Len())
	}
}

func TestAudioToAudioStageFailures(t *testing.T) {
	tests := []struct {
		name  string
		stt   fakeSTT
		tr    *fakeTranslator
		tts   fakeTTS
		title string
		code  string
	}{
		{
			name:  "transcription",
			stt:   fakeSTT{err: errors.New("whisper down")},
			tr:    &fakeTranslator{out: "x"},
			tts:   fakeTTS{audio: []byte("x")},
			title: "Transcription failed",
			code:  string(pipeline.KindTranscription),
		},
		{
			name:  "silence",
			stt:   fakeSTT{text: "   "},
			tr:    &fakeTranslator{out: "x"},
			tts:   fakeTTS{audio: []byte("x")},
			title: "Transcription failed",
			code:  string(pipeline.KindTranscription),
		},
		{
			name:  "translation",
			stt:   fakeSTT{text: "Good morning", lang: "english"},
			tr:    &fakeTranslator{err: errors.New("model loading")},
			tts:   fakeTTS{audio: []byte("x")},
			title: "Translation failed",
			code:  string(pipeline.KindTranslation),
		},
		{
			name:  "zero byte synthesis",
			stt:   fakeSTT{text: "Good morning", lang: "english"},
			tr:    &fakeTranslator{out: "Buenos días"},
			tts:   fakeTTS{audio: []byte{}},
			title: "Speech synthesis failed",
			code:  string(pipeline.KindSynthesis),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.stt, tt.tr, tt.tts)

			resp, out := postAudio(t, env, []byte("webm"), nil)
			if resp.StatusCode != http.StatusInternalServerError {
				t.Fatalf("status = %d, body %v", resp.StatusCode, out)
			}
			if out["error"] != tt.title {
				t.Fatalf("error = %q, want %q", out["error"], tt.title)
			}
			if out["code"] != tt.code {
				t.Fatalf("code = %q, want %q", out["code"], tt.code)
			}
			if out["details"] == "" {
				t.Fatal("details are empty")
			}
			if env.store.Len() != 0 {
				t.Fatalf("store has %d artifacts", env.store.Len())
			}
		})
	}
}

func TestGetAudioUnknownID(t *testing.T) {
	env := newTestEnv(t, fakeSTT{}, &fakeTranslator{}, fakeTTS{})

	resp, err := http.Get(env.srv.URL + "/api/audio/does-not-exist")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]string
	json.NewDecoder(resp.Body).Decode(&out)
	if out["error"] != "Audio file not found" {
		t.Fatalf("error = %q", out["error"])
	}
}

func TestCleanup(t *testing.T) {
	env := newTestEnv(t, fakeSTT{}, &fakeTranslator{}, fakeTTS{})
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		a, err := env.store.Save(ctx, []byte("audio"), ".mp3")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, a.ID)
	}

	cleanup := func() string {
		resp, err := http.Post(env.srv.URL+"/api/cleanup", "application/json", nil)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var out map[string]string
		json.NewDecoder(resp.Body).Decode(&out)
		return out["message"]
	}

	if msg := cleanup(); msg != "Cleaned up 3 audio files" {
		t.Fatalf("message = %q", msg)
	}
	if msg := cleanup(); msg != "Cleaned up 0 audio files" {
		t.Fatalf("second message = %q", msg)
	}

	for _, id := range ids {
		resp, err := http.Get(env.srv.URL + "/api/audio/" + id)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: status = %d", id, resp.StatusCode)
		}
	}
}

func TestTranslateText(t *testing.T) {
	tr := &fakeTranslator{out: "Bonjour"}
	env := newTestEnv(t, fakeSTT{}, tr, fakeTTS{})

	body := strings.NewReader(`{"text":"Good day","sourceLang":"en","targetLang":"fr"}`)
	resp, err := http.Post(env.srv.URL+"/api/translate-text", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out map[string]string
	json.NewDecoder(resp.Body).Decode(&out)
	if out["translatedText"] != "Bonjour" {
		t.Fatalf("translatedText = %q", out["translatedText"])
	}
	if c := tr.calls[0]; c[1] != "eng_Latn" || c[2] != "fra_Latn" {
		t.Fatalf("languages = %v", c)
	}
}

func TestTranslateTextEmpty(t *testing.T) {
	env := newTestEnv(t, fakeSTT{}, &fakeTranslator{out: "x"}, fakeTTS{})

	resp, err := http.Post(env.srv.URL+"/api/translate-text", "application/json", strings.NewReader(`{"text":"  "}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestLanguages(t *testing.T) {
	env := newTestEnv(t, fakeSTT{}, &fakeTranslator{}, fakeTTS{})

	resp, err := http.Get(env.srv.URL + "/api/languages")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out []map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 12 {
		t.Fatalf("languages = %d", len(out))
	}
}

func TestHistoryRequiresIdentity(t *testing.T) {
	env := newTestEnv(t, fakeSTT{}, &fakeTranslator{}, fakeTTS{})
	env.history.enabled = true

	resp, err := http.Get(env.srv.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/history", nil)
	req.Header.Set("Authorization", "Bearer 42.deadbeef")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("forged token status = %d", resp.StatusCode)
	}
}

func TestHistoryForUser(t *testing.T) {
	env := newTestEnv(t, fakeSTT{}, &fakeTranslator{}, fakeTTS{})
	env.history.enabled = true
	env.history.records = []ports.TranslationRecord{{ID: 1, InputText: "Hello", TranslatedText: "Hola"}}

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/history?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+env.auth.Sign(42))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env.history.gotUser != 42 {
		t.Fatalf("user = %d", env.history.gotUser)
	}
	var out []ports.TranslationRecord
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].TranslatedText != "Hola" {
		t.Fatalf("records = %+v", out)
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := newTestEnv(t, fakeSTT{}, &fakeTranslator{}, fakeTTS{})

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/history", nil)
	req.Header.Set("Authorization", "Bearer "+env.auth.Sign(7))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
