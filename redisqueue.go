// Package redisqueue provides Redis-backed message queues and distributed
// locks behind a single client.
//
// Basic usage:
//
//	client, err := redisqueue.New(ctx, redisqueue.WithConfigOptions(
//		config.WithRedisAddr("localhost", 6379),
//	))
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	_ = client.Sender().SendToQueue(ctx, redisqueue.Queue1, "order-42")
//
//	listener := client.Listener(redisqueue.LogProcessorFactory(client.Logger()))
//	go listener.Run(ctx)
//
//	ok, err := client.Locks().Acquire(ctx, redisqueue.Actions, "job-7", 5*time.Second)
package redisqueue

import (
	"github.com/kart-io/redisqueue/pkg/config"
	"github.com/kart-io/redisqueue/pkg/lock"
	"github.com/kart-io/redisqueue/pkg/logger"
	"github.com/kart-io/redisqueue/pkg/queue"
)

// ================================
// Core type aliases
// ================================

type (
	// Config holds the client configuration
	Config = config.Config

	// ConfigOption mutates a Config
	ConfigOption = config.Option

	// Queue is the contract shared by every queue strategy
	Queue = queue.Queue

	// QueueName identifies a logical queue
	QueueName = queue.QueueName

	// QueueType selects a queue strategy
	QueueType = queue.QueueType

	// Processor handles one message popped by the listener
	Processor = queue.Processor

	// ProcessorFunc adapts a function to Processor
	ProcessorFunc = queue.ProcessorFunc

	// ProcessorFactory creates a Processor per message
	ProcessorFactory = queue.ProcessorFactory

	// Listener drains the FIFO queues
	Listener = queue.Listener

	// ListenerOption configures a Listener
	ListenerOption = queue.ListenerOption

	// Sender is the FIFO producer
	Sender = queue.Sender

	// Factory hands out queue strategies
	Factory = queue.Factory

	// LockManager manages distributed locks
	LockManager = lock.Manager

	// LockCategory is a lock resource class
	LockCategory = lock.Category

	// Logger interface for logging
	Logger = logger.Logger

	// LogLevel defines log levels
	LogLevel = logger.LogLevel
)

// Queue names
const (
	Queue1 = queue.Queue1
	Queue2 = queue.Queue2
	Queue3 = queue.Queue3
)

// Queue strategies
const (
	ListQueue    = queue.ListQueueType
	DelayedQueue = queue.DelayedQueueType
	PubSubQueue  = queue.PubSubQueueType
	StreamQueue  = queue.StreamQueueType
)

// Lock categories
const (
	Database = lock.Database
	Actions  = lock.Actions
)

// Constants for log levels
const (
	LogLevelSilent = logger.Silent
	LogLevelError  = logger.Error
	LogLevelWarn   = logger.Warn
	LogLevelInfo   = logger.Info
	LogLevelDebug  = logger.Debug
)

// LogProcessorFactory returns the default processor factory, which logs
// every message it receives.
func LogProcessorFactory(log Logger) ProcessorFactory {
	return queue.LogProcessorFactory(log)
}
