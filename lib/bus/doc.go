// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bus is the topic bus the speed sensor, the camera, the
// heartbeat ticker, and the uploader talk over. A message is a topic
// and a body; on text transports it travels as one frame,
//
//	<topic> <json-body>
//
// split at the first space. Topics are hierarchical with "/" and share
// the prefix "event/".
//
// Delivery is best-effort and at most once on every transport. A
// subscriber that is not connected when a message is published never
// sees it.
//
// Transports:
//
//   - ZeroMQ ([NewZMQSubscriber], [NewZMQPublisher]): the production
//     wire. Each producer binds a PUB socket; the uploader connects one
//     SUB socket to all of them with a prefix filter. It links libzmq
//     through cgo and is only compiled with the zmq build tag
//     (go build -tags zmq); without it the constructors return
//     [ErrZMQUnavailable].
//   - Redis pub/sub ([NewRedisSubscriber], [NewRedisPublisher]):
//     channels named by topic, subscribed by pattern.
//   - Kafka ([NewKafkaSubscriber], [NewKafkaPublisher]): one Kafka topic
//     per bus topic with "/" replaced by ".".
//   - In-memory ([Memory]): for tests and single-process setups.
//
// [Open] and [OpenPublisher] select a transport from [Options].
package bus
