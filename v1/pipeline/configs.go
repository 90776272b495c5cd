package pipeline

// Config controls how consumed records are processed.
type Config struct {
	// Workers is the number of records processed in parallel. Records of one
	// partition always go to the same worker, so their order and commit
	// order are kept.
	Workers int `yaml:"workers" envconfig:"PIPELINE_WORKERS" default:"4" validate:"min=1,max=256"`

	// UnroutedTopic receives records no transform changed. Empty means such
	// records are logged and skipped.
	UnroutedTopic string `yaml:"unrouted_topic" envconfig:"PIPELINE_UNROUTED_TOPIC"`

	// DLQTopic receives the original message of failed records, with "error"
	// and "error-stage" headers. Empty means a failure stops the pipeline
	// without committing the record.
	DLQTopic string `yaml:"dlq_topic" envconfig:"PIPELINE_DLQ_TOPIC"`

	// EnsureTopics creates UnroutedTopic and DLQTopic on start.
	EnsureTopics bool `yaml:"ensure_topics" envconfig:"PIPELINE_ENSURE_TOPICS"`
}

// DefaultWorkers is used when Config.Workers is not positive.
const DefaultWorkers = 4

// Dead letter headers.
const (
	HeaderError      = "error"
	HeaderErrorStage = "error-stage"
)

// Stages reported in HeaderErrorStage besides transform aliases.
const (
	StageDecode = "decode"
	StageEncode = "encode"
)
