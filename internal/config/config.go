package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Insecure  bool
}

func (s S3) Enabled() bool { return s.Endpoint != "" && s.Bucket != "" }

// Config holds everything read from the environment at startup.
type Config struct {
	Port          string
	DatabaseURL   string
	PublicBaseURL string

	STTProvider     string
	OpenAIKey       string
	OpenAIBaseURL   string
	WhisperModel    string
	DeepgramKey     string
	HFToken         string
	HFModelURL      string
	TTSProvider     string
	ElevenLabsKey   string
	ElevenLabsVoice string
	ElevenLabsModel string

	AudioDir              string
	UploadDir             string
	PipelineTimeout       time.Duration
	MaxUploadBytes        int64
	ArtifactMaxAge        time.Duration
	ArtifactSweepInterval time.Duration
	RateLimitPerMin       int

	S3 S3

	AuthSecret          string
	TelegramAlertToken  string
	TelegramAlertChatID int64
}

// Load reads the environment. Call godotenv.Load first to pick up .env.
func Load() (*Config, error) {
	c := &Config{
		Port:          getenv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		STTProvider:     getenv("STT_PROVIDER", "whisper"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		WhisperModel:    getenv("WHISPER_MODEL", "whisper-1"),
		DeepgramKey:     os.Getenv("DEEPGRAM_API_KEY"),
		HFToken:         os.Getenv("HF_API_TOKEN"),
		HFModelURL:      os.Getenv("HF_MODEL_URL"),
		TTSProvider:     os.Getenv("TTS_PROVIDER"),
		ElevenLabsKey:   os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoice: os.Getenv("ELEVENLABS_VOICE_ID"),
		ElevenLabsModel: os.Getenv("ELEVENLABS_MODEL_ID"),

		AudioDir:  getenv("AUDIO_DIR", filepath.Join(os.TempDir(), "voxbridge", "audio")),
		UploadDir: getenv("UPLOAD_DIR", filepath.Join(os.TempDir(), "voxbridge", "uploads")),

		S3: S3{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    os.Getenv("S3_REGION"),
		},

		AuthSecret:         os.Getenv("AUTH_SECRET"),
		TelegramAlertToken: os.Getenv("TELEGRAM_ALERT_TOKEN"),
	}

	if c.TTSProvider == "" {
		c.TTSProvider = "gtranslate"
		if c.ElevenLabsKey != "" {
			c.TTSProvider = "elevenlabs"
		}
	}

	var err error
	if c.PipelineTimeout, err = duration("PIPELINE_TIMEOUT", 120*time.Second); err != nil {
		return nil, err
	}
	if c.ArtifactMaxAge, err = duration("ARTIFACT_MAX_AGE", 0); err != nil {
		return nil, err
	}
	if c.ArtifactSweepInterval, err = duration("ARTIFACT_SWEEP_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}

	mb, err := integer("MAX_UPLOAD_MB", 25)
	if err != nil {
		return nil, err
	}
	c.MaxUploadBytes = mb << 20

	rate, err := integer("RATE_LIMIT_PER_MIN", 30)
	if err != nil {
		return nil, err
	}
	c.RateLimitPerMin = int(rate)

	if c.TelegramAlertChatID, err = integer("TELEGRAM_ALERT_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if c.S3.Insecure, err = boolean("S3_INSECURE", false); err != nil {
		return nil, err
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	switch c.STTProvider {
	case "whisper", "deepgram":
	default:
		return fmt.Errorf("STT_PROVIDER: unknown provider %q (supported: whisper, deepgram)", c.STTProvider)
	}
	switch c.TTSProvider {
	case "elevenlabs", "gtranslate":
	default:
		return fmt.Errorf("TTS_PROVIDER: unknown provider %q (supported: elevenlabs, gtranslate)", c.TTSProvider)
	}
	if c.HFToken == "" {
		return fmt.Errorf("HF_API_TOKEN is not set")
	}
	if c.TTSProvider == "elevenlabs" && c.ElevenLabsKey == "" {
		return fmt.Errorf("ELEVENLABS_API_KEY is not set")
	}
	if c.PipelineTimeout <= 0 {
		return fmt.Errorf("PIPELINE_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	if c.ArtifactMaxAge > 0 && c.ArtifactSweepInterval <= 0 {
		return fmt.Errorf("ARTIFACT_SWEEP_INTERVAL must be positive when ARTIFACT_MAX_AGE is set")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func integer(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolean(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
