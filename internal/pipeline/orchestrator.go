package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/Vovarama1992/voxbridge/internal/artifacts"
	"github.com/Vovarama1992/voxbridge/internal/error_notificator"
	"github.com/Vovarama1992/voxbridge/internal/languages"
	"github.com/Vovarama1992/voxbridge/internal/ports"
	"github.com/Vovarama1992/voxbridge/internal/speech"
)

// State is a step of one audio-to-audio run.
type State string

const (
	StateReceivingInput    State = "ReceivingInput"
	StateTranscribing      State = "Transcribing"
	StateResolvingLanguage State = "ResolvingLanguage"
	StateTranslating       State = "Translating"
	StateSynthesizing      State = "Synthesizing"
	StateStoring           State = "Storing"
	StateResponding        State = "Responding"
	StateFailed            State = "Failed"
)

const synthesizedExt = ".mp3"

type Transcriber interface {
	Transcribe(ctx context.Context, filePath, languageHint string) (speech.Transcription, error)
}

type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

type ArtifactStore interface {
	Save(ctx context.Context, data []byte, ext string) (artifacts.Artifact, error)
}

// HistoryRecorder persists translation records out of band.
type HistoryRecorder interface {
	Record(rec ports.TranslationRecord)
}

// Request is one audio-to-audio call.
type Request struct {
	Audio    io.Reader
	Filename string
	// Size is the declared upload size; zero means empty.
	Size       int64
	SourceLang string
	TargetLang string
	UserID     *int64
	// AudioURL builds the public retrieval reference for an artifact id.
	AudioURL func(id string) string
}

type Result struct {
	TranslatedText string
	OriginalText   string
	AudioID        string
	AudioURL       string
	DetectedLang   string
}

type Orchestrator struct {
	stt      Transcriber
	tr       Translator
	tts      Synthesizer
	store    ArtifactStore
	history  HistoryRecorder
	notifier error_notificator.Notificator
	tempDir  string
}

func NewOrchestrator(
	stt Transcriber,
	tr Translator,
	tts Synthesizer,
	store ArtifactStore,
	history HistoryRecorder,
	notifier error_notificator.Notificator,
	tempDir string,
) *Orchestrator {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if history == nil {
		history = discardHistory{}
	}
	if notifier == nil {
		notifier = error_notificator.LogInfra{}
	}
	return &Orchestrator{
		stt:      stt,
		tr:       tr,
		tts:      tts,
		store:    store,
		history:  history,
		notifier: notifier,
		tempDir:  tempDir,
	}
}

type discardHistory struct{}

func (discardHistory) Record(ports.TranslationRecord) {}

type run struct {
	id    string
	start time.Time
	state State
}

func (r *run) enter(s State) {
	r.state = s
	log.Printf("[pipeline][%s][%.1fs] %s", r.id, time.Since(r.start).Seconds(), s)
}

// TranslateAudio runs transcription, translation, synthesis and storage for
// one upload. The saved upload is removed before it returns, on every path.
func (o *Orchestrator) TranslateAudio(ctx context.Context, req Request) (*Result, error) {
	r := &run{id: xid.New().String(), start: time.Now()}
	res, err := o.translateAudio(ctx, r, req)
	if err != nil {
		failedIn := r.state
		r.enter(StateFailed)
		log.Printf("[pipeline][%s] failed in %s: %v", r.id, failedIn, err)
		if KindOf(err) != KindInput {
			_ = o.notifier.Notify(ctx, "pipeline", err,
				fmt.Sprintf("run=%s state=%s src=%s tgt=%s", r.id, failedIn, req.SourceLang, req.TargetLang))
		}
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) translateAudio(ctx context.Context, r *run, req Request) (*Result, error) {
	r.enter(StateReceivingInput)
	if req.Audio == nil || strings.TrimSpace(req.Filename) == "" || req.Size <= 0 {
		return nil, fail(KindInput, "audio", ErrNoAudio)
	}

	declaredSource := strings.TrimSpace(req.SourceLang)
	if declaredSource == "" {
		declaredSource = languages.DefaultSource
	}
	auto := strings.EqualFold(declaredSource, languages.Auto)
	target := resolveCode(req.TargetLang, languages.DefaultTarget)

	r.enter(StateTranscribing)
	hint := ""
	source := ""
	if !auto {
		// unknown declared codes translate from the default but leave
		// detection to the engine
		source = languages.DefaultSource
		if tc, ok := languages.Normalize(declaredSource); ok {
			source = tc
			hint, _ = languages.TranslationToRecognition(tc)
		}
	}

	transcript, err := o.transcribe(ctx, req, hint)
	if err != nil {
		return nil, err
	}

	r.enter(StateResolvingLanguage)
	if auto {
		source = languages.RecognitionToTranslation(transcript.Language)
	}

	r.enter(StateTranslating)
	translated, err := o.tr.Translate(ctx, transcript.Text, source, target)
	if err != nil {
		return nil, fail(KindTranslation, fmt.Sprintf("%s→%s", source, target), err)
	}

	r.enter(StateSynthesizing)
	voiceLang := languages.ToSynthesisCode(target)
	audio, err := o.tts.Synthesize(ctx, translated, voiceLang)
	if err != nil {
		return nil, fail(KindSynthesis, voiceLang, err)
	}
	if len(audio) == 0 {
		return nil, fail(KindSynthesis, voiceLang, speech.ErrEmptyAudio)
	}

	r.enter(StateStoring)
	artifact, err := o.store.Save(ctx, audio, synthesizedExt)
	if err != nil {
		return nil, fail(KindStorage, "save synthesized audio", err)
	}

	r.enter(StateResponding)
	res := &Result{
		TranslatedText: translated,
		OriginalText:   transcript.Text,
		AudioID:        artifact.ID,
		AudioURL:       artifact.ID,
		DetectedLang:   source,
	}
	if req.AudioURL != nil {
		res.AudioURL = req.AudioURL(artifact.ID)
	}

	audioRef := res.AudioURL
	if artifact.RemoteURL != "" {
		audioRef = artifact.RemoteURL
	}
	o.history.Record(ports.TranslationRecord{
		UserID:         req.UserID,
		InputText:      transcript.Text,
		TranslatedText: translated,
		SourceLang:     source,
		TargetLang:     target,
		IsAudio:        true,
		AudioURL:       &audioRef,
	})

	return res, nil
}

// transcribe saves the upload to a temp file, runs the stage and removes the
// file before returning.
func (o *Orchestrator) transcribe(ctx context.Context, req Request, hint string) (speech.Transcription, error) {
	f, err := os.CreateTemp(o.tempDir, "upload-*"+uploadExt(req.Filename))
	if err != nil {
		return speech.Transcription{}, fail(KindStorage, "create temp upload", err)
	}
	path := f.Name()
	defer os.Remove(path)

	n, err := io.Copy(f, req.Audio)
	closeErr := f.Close()
	if err != nil {
		return speech.Transcription{}, fail(KindStorage, "save upload", err)
	}
	if closeErr != nil {
		return speech.Transcription{}, fail(KindStorage, "save upload", closeErr)
	}
	if n == 0 {
		return speech.Transcription{}, fail(KindInput, "audio", ErrNoAudio)
	}

	transcript, err := o.stt.Transcribe(ctx, path, hint)
	if err != nil {
		return speech.Transcription{}, fail(KindTranscription, filepath.Base(req.Filename), err)
	}
	return transcript, nil
}

// TranslateText is the text-only path: the translation stage plus history.
func (o *Orchestrator) TranslateText(ctx context.Context, text, sourceLang, targetLang string, userID *int64) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fail(KindInput, "text", fmt.Errorf("text is required"))
	}

	source := resolveCode(sourceLang, languages.DefaultSource)
	target := resolveCode(targetLang, languages.DefaultTarget)

	translated, err := o.tr.Translate(ctx, text, source, target)
	if err != nil {
		e := fail(KindTranslation, fmt.Sprintf("%s→%s", source, target), err)
		_ = o.notifier.Notify(ctx, "translate-text", e, "")
		return "", e
	}

	o.history.Record(ports.TranslationRecord{
		UserID:         userID,
		InputText:      text,
		TranslatedText: translated,
		SourceLang:     source,
		TargetLang:     target,
	})
	return translated, nil
}

// resolveCode maps a caller code in any vocabulary to a translation code. An
// empty code takes def; an unknown one takes the registry default.
func resolveCode(code, def string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return def
	}
	if tc, ok := languages.Normalize(code); ok {
		return tc
	}
	return languages.DefaultSource
}

var knownUploadExts = map[string]bool{
	".mp3": true, ".mp4": true, ".mpeg": true, ".mpga": true, ".m4a": true,
	".wav": true, ".webm": true, ".ogg": true, ".oga": true, ".flac": true,
}

// uploadExt keeps the container extension so the engine can sniff the format.
func uploadExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if knownUploadExts[ext] {
		return ext
	}
	return ".webm"
}
