package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ironsheep/facade-recolor/internal/config"
	"github.com/ironsheep/facade-recolor/internal/visualizer"
	"github.com/ironsheep/facade-recolor/internal/worker"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "recolor-worker",
	Short: "MQTT worker for wall and facade recoloring",
	Long: `recolor-worker subscribes to <topic_prefix>/recolor/request and publishes
each result to <topic_prefix>/recolor/response/<requestId>.

Settings come from an optional config file and RECOLOR_* environment
variables, e.g. RECOLOR_MQTT_BROKER=tcp://broker:1883.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("recolor-worker %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file (yaml, json or toml)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if cfg.Debug() {
		log.Printf("Recolor worker v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	viz, err := visualizer.FromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.New(viz, cfg.MQTT.TopicPrefix, cfg.MQTT.Workers)

	clientID := uuid.New().String()
	log.Println("[MQTT]", "connecting to", cfg.MQTT.Broker, "with client ID:", clientID)
	opts := mqtt.NewClientOptions().AddBroker(cfg.MQTT.Broker).SetClientID(clientID)
	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetConnectTimeout(30 * time.Second)
	opts.SetAutoReconnect(true)
	// Handlers block while all worker slots are busy.
	opts.SetOrderMatters(false)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		log.Println("[MQTT]", "connected")
		if err := w.Subscribe(ctx, c); err != nil {
			log.Println("[MQTT]", err)
		}
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		log.Println("[MQTT]", "connection lost:", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.MQTT.Broker, token.Error())
	}

	<-ctx.Done()
	log.Println("Interrupt signal received. Draining requests...")
	client.Unsubscribe(w.RequestTopic()).WaitTimeout(5 * time.Second)
	w.Wait()
	client.Disconnect(250)
	return nil
}

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Worker error: %v", err)
	}
}
