// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package eventprocessor delivers entry-mutation events with Watermill.

After a list mutation commits, the entries service hands a
models.EntryMutatedEvent to Publisher. A Consumer subscribed to the same
topic recomputes the affected user's achievements for the event's category
and drops that user's cached reads.

# Transports

NewTransport builds the Watermill publisher and subscriber pair from
config.MessagingConfig:

  - memory: gochannel.GoChannel, single process, nothing survives a restart
  - nats: NATS JetStream through watermill-nats, durable consumers in a
    queue group so several instances share the work

With messaging.embedded_server set, NewEmbeddedServer runs a JetStream
server in-process and the nats transport connects to its ClientURL.

# Delivery

Events are hints. The periodic batch recompute is the source of truth, so a
lost or dropped event only delays an unlock until the next pass. The
consumer therefore acks malformed payloads and events that still fail after
the retry middleware gives up, instead of redelivering them forever.

	pub, sub, err := eventprocessor.NewTransport(&cfg.Messaging, wmLogger)
	publisher := eventprocessor.NewPublisher(pub, cfg.Messaging.Topic)
	entriesService.SetPublisher(publisher)

	consumer, err := eventprocessor.NewConsumer(&cfg.Messaging, sub, updater, readCache, logger, wmLogger)
	go consumer.Run(ctx)
*/
package eventprocessor
