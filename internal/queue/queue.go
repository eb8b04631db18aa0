// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package queue carries the two ingestion pipeline jobs — process_ingestion
// and analyze_findings — over Kafka. A Producer publishes job messages by
// ingestion id; a consumer-group worker pool (see Consumer) dispatches them
// to registered handlers.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Job names carried in message values.
const (
	JobProcessIngestion = "process_ingestion"
	JobAnalyzeFindings  = "analyze_findings"
)

// Message is the JSON envelope published for both job kinds.
type Message struct {
	Job         string    `json:"job"`
	IngestionID uuid.UUID `json:"ingestion_id"`
}

// Producer publishes ingestion pipeline jobs to their topics.
type Producer struct {
	async        sarama.AsyncProducer
	processTopic string
	analyzeTopic string
}

// NewProducer creates a Producer backed by a Sarama async producer
// configured for publishes acknowledged by all in-sync replicas and retried
// up to 5 times.
func NewProducer(brokers []string, processTopic, analyzeTopic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	async, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("queue: new producer failed: %w", err)
	}

	p := &Producer{async: async, processTopic: processTopic, analyzeTopic: analyzeTopic}
	go p.drain()
	return p, nil
}

// drain discards success acks and surfaces nothing for failures beyond what
// Sarama itself logs; callers that need delivery guarantees should re-poll
// ingestion status rather than block on producer acks.
func (p *Producer) drain() {
	for {
		select {
		case <-p.async.Successes():
		case <-p.async.Errors():
		}
	}
}

// EnqueueProcessIngestion publishes a process_ingestion job.
func (p *Producer) EnqueueProcessIngestion(ingestionID uuid.UUID) error {
	return p.publish(p.processTopic, Message{Job: JobProcessIngestion, IngestionID: ingestionID})
}

// EnqueueAnalyzeFindings publishes an analyze_findings job.
func (p *Producer) EnqueueAnalyzeFindings(ingestionID uuid.UUID) error {
	return p.publish(p.analyzeTopic, Message{Job: JobAnalyzeFindings, IngestionID: ingestionID})
}

func (p *Producer) publish(topic string, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("queue: marshal job failed: %w", err)
	}

	p.async.Input() <- &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(msg.IngestionID.String()),
		Value: sarama.ByteEncoder(value),
	}
	return nil
}

// Close releases the underlying producer.
func (p *Producer) Close() error {
	return p.async.Close()
}
