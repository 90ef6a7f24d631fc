package kafka_config

import "time"

const (
	DefaultKafkaBrokers  = ""
	DefaultEventsTopic   = "calendar.events"
	DefaultConsumerGroup = "calendar-notifications"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 50 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	DefaultConsumerStartOffset    = int64(-1)
	DefaultConsumerMinBytes       = 1
	DefaultConsumerMaxBytes       = 10e6
	DefaultConsumerMaxWait        = 500 * time.Millisecond
	DefaultConsumerCommitInterval = time.Second
	DefaultConsumerMaxRetries     = 3

	DefaultPublishTimeout = 5 * time.Second
)
