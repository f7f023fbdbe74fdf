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

package eventlog

import (
	"encoding/json"
	"testing"

	"github.com/Shopify/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainindex/pos-indexer/log"
)

func TestPublishEnqueuesMarshaledEvent(t *testing.T) {
	mockProducer := mocks.NewAsyncProducer(t, nil)
	mockProducer.ExpectInputAndSucceed()

	p := &Publisher{
		producer: mockProducer,
		topic:    "indexer.events",
		log:      log.New("eventlog.test"),
	}

	p.Publish("h1", map[string]interface{}{"height": 1, "state_hash": "h1"})

	msg := <-mockProducer.Successes()
	require.Equal(t, "indexer.events", msg.Topic)

	value, err := msg.Value.Encode()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(value, &decoded))
	assert.Equal(t, "h1", decoded["state_hash"])
	assert.InDelta(t, 1, decoded["height"], 0.001)

	require.NoError(t, mockProducer.Close())
}
