package app

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aryansondharva/Aura/internal/jobs"
	"github.com/aryansondharva/Aura/internal/modules/conversation"
	"github.com/aryansondharva/Aura/internal/modules/ingestion/extractor"
	"github.com/aryansondharva/Aura/internal/modules/quiz"
	"github.com/aryansondharva/Aura/internal/modules/topics"
	"github.com/aryansondharva/Aura/internal/platform/envutil"
	"github.com/aryansondharva/Aura/internal/services"
)

type Config struct {
	LogMode     string
	HTTPAddr    string
	ServiceName string
	CORSOrigins []string

	JWTSecretKey string

	UploadMaxBytes      int64
	ClusterThreshold    float64
	TopicPromptMaxChars int
	QuizPromptMaxChars  int
	RetrievalTopK       int
	SchedulerModelPath  string

	ChatSessionTTL      time.Duration
	ChatSessionCapacity int

	// SweepInterval of zero disables the periodic overdue sweep.
	SweepInterval time.Duration
}

// LoadDotEnv reads .env files when present. Variables already set in the environment win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	_ = godotenv.Load(files...)
}

func LoadConfig() Config {
	return Config{
		LogMode:     envutil.String("LOG_MODE", "development"),
		HTTPAddr:    envutil.String("HTTP_ADDR", ":8080"),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "aura"),
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),

		UploadMaxBytes:      int64(envutil.Int("UPLOAD_MAX_BYTES", int(extractor.DefaultMaxBytes))),
		ClusterThreshold:    envutil.Float("TOPIC_CLUSTER_THRESHOLD", topics.DefaultThreshold),
		TopicPromptMaxChars: envutil.Int("TOPIC_PROMPT_MAX_CHARS", topics.DefaultPromptMaxChars),
		QuizPromptMaxChars:  envutil.Int("QUIZ_PROMPT_MAX_CHARS", quiz.DefaultPromptMaxChars),
		RetrievalTopK:       envutil.Int("CHAT_RETRIEVAL_TOP_K", services.DefaultRetrievalTopK),
		SchedulerModelPath:  envutil.String("SCHEDULER_MODEL_PATH", ""),

		ChatSessionTTL:      envutil.Duration("CHAT_SESSION_TTL", conversation.DefaultTTL),
		ChatSessionCapacity: envutil.Int("CHAT_SESSION_CAPACITY", conversation.DefaultCapacity),

		SweepInterval: envutil.Duration("SWEEP_INTERVAL", jobs.DefaultSweepInterval),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
