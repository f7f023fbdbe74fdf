// Copyright 2024 The pos-indexer Authors
// This file is part of the pos-indexer library.
//
// The pos-indexer library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The pos-indexer library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the pos-indexer library. If not, see <http://www.gnu.org/licenses/>.

// Package eventlog mirrors every canonical-item write to a Kafka topic
// for external consumers, best-effort and independent of the relational
// sinks that hold the durable, consistency-bearing view.
package eventlog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	uuid "github.com/hashicorp/go-uuid"
	"github.com/pkg/errors"

	"github.com/chainindex/pos-indexer/log"
)

// Publisher publishes JSON-encoded events to a fixed Kafka topic.
type Publisher struct {
	producer sarama.AsyncProducer
	admin    sarama.ClusterAdmin
	topic    string
	replicas int16
	log      *log.Logger
}

// Open connects to the given brokers and ensures topic exists with the
// requested replication factor.
func Open(groupID string, brokers []string, topic string, replicas int16) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Version = sarama.MaxVersion
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 500 * time.Millisecond
	config.Producer.Return.Errors = false

	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, errors.Wrap(err, "eventlog: generate client id")
	}
	config.ClientID = fmt.Sprintf("%s-%s", groupID, id)

	admin, err := sarama.NewClusterAdmin(brokers, config)
	if err != nil {
		return nil, errors.Wrap(err, "eventlog: new cluster admin")
	}

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		admin.Close()
		return nil, errors.Wrap(err, "eventlog: new async producer")
	}

	p := &Publisher{
		producer: producer,
		admin:    admin,
		topic:    topic,
		replicas: replicas,
		log:      log.New("eventlog"),
	}
	if err := p.createTopic(); err != nil {
		p.log.Warn("failed to create topic, assuming it already exists", "topic", topic, "err", err)
	}
	return p, nil
}

func (p *Publisher) createTopic() error {
	return p.admin.CreateTopic(p.topic, &sarama.TopicDetail{
		NumPartitions:     10,
		ReplicationFactor: p.replicas,
	}, false)
}

// Publish marshals event to JSON and enqueues it on the topic,
// partitioned by key. A publish failure is logged and swallowed: the
// event log is an auxiliary mirror, not a consistency-bearing store.
func (p *Publisher) Publish(key string, event interface{}) {
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal event", "key", key, "err", err)
		return
	}

	select {
	case p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}:
	default:
		p.log.Warn("producer input buffer full, dropping event", "key", key)
	}
}

// Close flushes and releases the producer and admin client.
func (p *Publisher) Close() error {
	perr := p.producer.Close()
	aerr := p.admin.Close()
	if perr != nil {
		return errors.Wrap(perr, "eventlog: close producer")
	}
	return errors.Wrap(aerr, "eventlog: close admin")
}
