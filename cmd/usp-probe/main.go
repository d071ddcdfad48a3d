package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rojolang/usp-go/internal/wavreader"
	"github.com/rojolang/usp-go/pkg/usp"
	"github.com/rojolang/usp-go/pkg/usp/telemetry"
	"github.com/rojolang/usp-go/pkg/usp/transport"
)

var (
	region        string
	authKind      string
	authData      string
	endpointKind  string
	language      string
	customURL     string
	verbose       bool
	wavPath       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "usp-probe",
		Short: "Probe a Unified Speech Protocol endpoint",
		Long:  "A command-line client for exercising the usp package against a live or mock service",
	}

	rootCmd.PersistentFlags().StringVar(&region, "region", "westus", "Service region")
	rootCmd.PersistentFlags().StringVar(&authKind, "auth-kind", "subscription-key", "subscription-key | token | rps-token")
	rootCmd.PersistentFlags().StringVar(&authData, "auth-data", "", "Authentication secret")
	rootCmd.PersistentFlags().StringVar(&endpointKind, "endpoint", "speech", "speech | translation | intent | cdsdk | custom")
	rootCmd.PersistentFlags().StringVar(&language, "language", "en-US", "Recognition language")
	rootCmd.PersistentFlags().StringVar(&customURL, "custom-endpoint-url", "", "Full custom endpoint URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(urlCmd())
	rootCmd.AddCommand(connectCmd())

	if err := rootCmd.Execute(); err != nil {
		usp.Log().Error(err.Error())
		os.Exit(1)
	}
}

func buildClientConfig() *usp.Client {
	cfg := usp.NewClient()
	cfg.Region = region
	cfg.Language = language
	cfg.CustomEndpointURL = customURL
	cfg.AuthData = authData

	switch endpointKind {
	case "translation":
		cfg.Endpoint = usp.EndpointTranslation
	case "intent":
		cfg.Endpoint = usp.EndpointIntent
	case "cdsdk":
		cfg.Endpoint = usp.EndpointCDSDK
	case "custom":
		cfg.Endpoint = usp.EndpointCustomEndpoint
	default:
		cfg.Endpoint = usp.EndpointSpeech
	}

	switch authKind {
	case "token":
		cfg.AuthKind = usp.AuthAuthorizationToken
	case "rps-token":
		cfg.AuthKind = usp.AuthSearchDelegationRPSToken
	default:
		cfg.AuthKind = usp.AuthSubscriptionKey
	}

	return cfg
}

func urlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the assembled connection URL without connecting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := buildClientConfig()
			dialURL, err := usp.BuildConnectionURL(cfg)
			if err != nil {
				return err
			}
			fmt.Println(dialURL)
			return nil
		},
	}
}

func connectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Open a connection and print every dispatched event",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				usp.SetLogger(usp.NewLogger(os.Stdout, zerolog.DebugLevel, true))
			}

			cfg := buildClientConfig()
			cfg.Callbacks = &usp.Callbacks{
				OnSpeechHypothesis: func(h usp.SpeechHypothesis) {
					fmt.Printf("[hypothesis] %s\n", h.Text)
				},
				OnSpeechPhrase: func(p usp.SpeechPhrase) {
					fmt.Printf("[phrase %s] %s\n", p.RecognitionStatus, p.DisplayText)
				},
				OnTurnStart: func(t usp.TurnStart) {
					fmt.Println("[turn.start]")
				},
				OnTurnEnd: func(t usp.TurnEnd) {
					fmt.Println("[turn.end]")
				},
				OnTranslationPhrase: func(p usp.TranslationPhrase) {
					fmt.Printf("[translation.phrase] %v\n", p.Translation.Translations)
				},
				OnError: func(recoverable bool, kind usp.ErrorKind, message string) {
					fmt.Printf("[error recoverable=%v kind=%s] %s\n", recoverable, kind, message)
				},
			}

			telemetryCtor := telemetry.NewPrometheusSink("usp_probe")
			conn := usp.NewConnection(cfg, transport.NewGorillaTransport, telemetryCtor, nil)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if err := conn.Connect(ctx); err != nil {
				return fmt.Errorf("connect failed: %w", err)
			}
			defer conn.Shutdown()

			fmt.Println("connected")

			if wavPath != "" {
				if err := streamWAV(conn, wavPath); err != nil {
					return fmt.Errorf("stream wav: %w", err)
				}
			}

			fmt.Println("press Ctrl+C to stop")
			<-ctx.Done()

			return nil
		},
	}

	cmd.Flags().StringVar(&wavPath, "wav", "", "Path to a WAV file to stream as the turn's audio")

	return cmd
}

func streamWAV(conn *usp.Connection, path string) error {
	wav, err := wavreader.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("streaming %s (%d Hz, %d-bit, %d channels)\n",
		path, wav.Format.SampleRate, wav.Format.BitsPerSample, wav.Format.Channels)

	for _, chunk := range wav.Chunks(3200) {
		if err := conn.QueueAudioSegment(chunk); err != nil {
			return err
		}
	}

	return conn.QueueAudioEnd()
}
