package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"innkeeper/internal/notifications"
	"innkeeper/pkg/config"
	"innkeeper/pkg/kafka"
	kafka_config "innkeeper/pkg/kafka/config"
	"innkeeper/pkg/logger"
)

const ServiceName = "notifier"

const consumerGroup = "innkeeper-notifier"

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	notifier := notifications.NewNotifier(notifications.NewLogSender(cfg.Log), cfg.Log)

	consumers := initConsumers(kafkaCfg, cfg.Log, notifier)
	defer func() {
		for _, c := range consumers {
			if err := c.Close(); err != nil {
				cfg.Log.Error("Failed to close consumer", "error", err)
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, c := range consumers {
		wg.Add(1)
		go func(c *kafka.Consumer) {
			defer wg.Done()
			if err := c.Start(ctx); err != nil && ctx.Err() == nil {
				cfg.Log.Error("Consumer stopped with error", "error", err)
			}
		}(c)
	}

	cfg.Log.Info("Notifier started", "consumer_group", consumerGroup)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown

	cfg.Log.Info("Shutdown signal received", "signal", sig)
	cancel()
	wg.Wait()
	cfg.Log.Info("Notifier stopped gracefully")
}

func initConsumers(kafkaCfg *kafka_config.Config, log *logger.Logger, notifier *notifications.Notifier) []*kafka.Consumer {
	specs := []struct {
		topic    string
		dlqTopic string
		handler  kafka.MessageHandler
	}{
		{kafka.TopicBookingConfirmed, kafka.TopicBookingConfirmedDLQ, notifier.HandleBookingEvent},
		{kafka.TopicBookingCancelled, kafka.TopicBookingCancelledDLQ, notifier.HandleBookingEvent},
		{kafka.TopicInvoiceIssued, kafka.TopicInvoiceIssuedDLQ, notifier.HandleInvoiceEvent},
	}

	consumers := make([]*kafka.Consumer, 0, len(specs))
	for _, spec := range specs {
		c, err := kafka.NewConsumer(kafkaCfg, spec.topic, consumerGroup, spec.dlqTopic, spec.handler)
		if err != nil {
			log.Fatal("Failed to create consumer", "topic", spec.topic, "error", err)
		}
		consumers = append(consumers, c)
	}

	return consumers
}
