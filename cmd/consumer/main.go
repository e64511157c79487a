package main

import (
	"context"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/link-clicks/internal/container"
	"github.com/serroba/link-clicks/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		do.ProvideValue(injector, options)
		container.LoggerPackage(injector)
		container.RedisPackage(injector)
		container.PubSubPackage(injector)
		container.ConsumerGroupPackage(injector)

		ctx, cancel := context.WithCancel(context.Background())
		stopped := make(chan struct{})
		logger := do.MustInvoke[*zap.Logger](injector)

		hooks.OnStart(func() {
			if options.InProcessEvents() {
				logger.Fatal("audit consumer needs the redis stream, run it with postgres or redis storage")
			}

			group := do.MustInvoke[*messaging.ConsumerGroup](injector)

			if err := group.Start(ctx); err != nil {
				logger.Fatal("failed to start consumer group", zap.Error(err))
			}

			logger.Info("audit consumers started", zap.Int("consumers", group.Len()))

			<-stopped
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")
			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			close(stopped)
			logger.Info("shutdown complete")
		})
	})

	cli.Run()
}
