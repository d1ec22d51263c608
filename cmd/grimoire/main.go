// Command grimoire runs each demonstration in sequence, with the
// parameters taken from an optional YAML config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cosmossdk.io/log"

	"github.com/ccarvalho-eng/grimoire/actor"
	"github.com/ccarvalho-eng/grimoire/config"
	"github.com/ccarvalho-eng/grimoire/fib"
	"github.com/ccarvalho-eng/grimoire/patterns"
)

const requestTimeout = time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := log.NewLogger(os.Stderr)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	system := actor.NewSystem(ctx, logger)

	if err := run(system, logger, cfg); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}

	if err := system.Shutdown(5 * time.Second); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func run(system *actor.System, logger log.Logger, cfg *config.Config) error {
	if err := runGreeter(system); err != nil {
		return err
	}
	if err := runCounter(system, logger, cfg.Counter); err != nil {
		return err
	}
	if err := runWorkers(system, logger, cfg.Workers); err != nil {
		return err
	}
	if err := runTicker(system, logger, cfg.Ticker); err != nil {
		return err
	}
	if err := runRegistry(system, logger); err != nil {
		return err
	}
	if err := runTrap(system, logger); err != nil {
		return err
	}
	if err := runWatch(system, logger); err != nil {
		return err
	}
	if err := runFlaky(system, logger, cfg.Flaky); err != nil {
		return err
	}
	logger.Info("fibonacci", "n", cfg.Fib.N, "value", fib.Fib(cfg.Fib.N))
	return nil
}

func runGreeter(system *actor.System) error {
	greeter, err := system.Spawn("greeter", &patterns.Greeter{})
	if err != nil {
		return err
	}
	defer greeter.Stop()

	for _, name := range []string{"Ana", "Bruno", "Clara"} {
		if err := greeter.Tell(patterns.Greet{Name: name}); err != nil {
			return err
		}
	}
	_, err = greeter.Request(patterns.Greeted{}, requestTimeout)
	return err
}

func runCounter(system *actor.System, logger log.Logger, cfg config.CounterConfig) error {
	counter, err := system.Spawn("counter", patterns.NewCounter(cfg.Initial))
	if err != nil {
		return err
	}
	defer counter.Stop()

	for i := 0; i < cfg.Increments; i++ {
		if err := counter.Tell(patterns.Increment{}); err != nil {
			return err
		}
	}
	for i := 0; i < cfg.Decrements; i++ {
		if err := counter.Tell(patterns.Decrement{}); err != nil {
			return err
		}
	}

	value, err := counter.Request(patterns.GetValue{}, requestTimeout)
	if err != nil {
		return err
	}
	logger.Info("counter",
		"initial", cfg.Initial,
		"increments", cfg.Increments,
		"decrements", cfg.Decrements,
		"value", value)
	return nil
}

func runWorkers(system *actor.System, logger log.Logger, cfg config.WorkersConfig) error {
	nums := make([]int, cfg.InputSize)
	for i := range nums {
		nums[i] = i + 1
	}

	doubled, err := patterns.DoubleAll(system, nums, cfg.Count)
	if err != nil {
		return err
	}
	logger.Info("worker pool", "workers", cfg.Count, "input", nums, "doubled", doubled)
	return nil
}

func runTicker(system *actor.System, logger log.Logger, cfg config.TickerConfig) error {
	ticker, err := system.Spawn("ticker", patterns.NewTicker(cfg.Interval.Duration))
	if err != nil {
		return err
	}
	defer ticker.Stop()

	time.Sleep(time.Duration(cfg.Ticks) * cfg.Interval.Duration)

	ticks, err := ticker.Request(patterns.TickCount{}, requestTimeout)
	if err != nil {
		return err
	}
	logger.Info("ticker", "interval", cfg.Interval.Duration, "ticks", ticks)
	return nil
}

func runRegistry(system *actor.System, logger log.Logger) error {
	first, err := patterns.Register(system, "answering")
	if err != nil {
		return err
	}
	defer first.Stop()

	_, err = patterns.Register(system, "answering")
	if !errors.Is(err, actor.ErrNameTaken) {
		return fmt.Errorf("expected name collision, got %v", err)
	}
	logger.Info("registry", "name", "answering", "secondClaim", err.Error())
	return nil
}

func runTrap(system *actor.System, logger log.Logger) error {
	out, err := patterns.Trap(system, func() error {
		return errors.New("no such file")
	}, requestTimeout)
	if err != nil {
		return err
	}
	logger.Info("trapped failure", "kind", out.Kind, "reason", out.Reason)

	out, err = patterns.Trap(system, func() error {
		panic("divide by zero")
	}, requestTimeout)
	if err != nil {
		return err
	}
	logger.Info("trapped panic", "kind", out.Kind, "reason", out.Reason)
	return nil
}

func runWatch(system *actor.System, logger log.Logger) error {
	down, err := patterns.Watch(system, func() {}, requestTimeout)
	if err != nil {
		return err
	}
	logger.Info("watched job finished", "actor", down.Name, "reason", down.Reason)
	return nil
}

func runFlaky(system *actor.System, logger log.Logger, cfg config.FlakyConfig) error {
	service, err := system.Spawn("flaky", patterns.NewFlakyService(cfg.Failures))
	if err != nil {
		return err
	}
	defer service.Stop()

	breaker := actor.NewBreaker("flaky", cfg.MaxFailures, cfg.Cooldown.Duration)
	for i := 0; i < cfg.Failures; i++ {
		if _, err := patterns.GuardedCall(breaker, service, requestTimeout); err == nil {
			break
		}
	}
	logger.Info("breaker after failures", "state", breaker.State().String())

	time.Sleep(cfg.Cooldown.Duration + 10*time.Millisecond)
	result, err := patterns.GuardedCall(breaker, service, requestTimeout)
	if err != nil {
		return err
	}
	logger.Info("breaker recovered", "state", breaker.State().String(), "result", result)
	return nil
}
