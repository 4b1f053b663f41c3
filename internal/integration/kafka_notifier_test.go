//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/cgsn-mio/moorproc/internal/adapter/kafka"
	"github.com/cgsn-mio/moorproc/internal/adapter/netcdf"
	"github.com/cgsn-mio/moorproc/internal/config"
	"github.com/cgsn-mio/moorproc/internal/domain"
	"github.com/cgsn-mio/moorproc/internal/instrument"
	"github.com/cgsn-mio/moorproc/internal/observability"
	"github.com/cgsn-mio/moorproc/internal/pipeline"
)

const testNotifyTopic = "dataset-updates-test"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka via testcontainers and returns its
// bootstrap broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("moorproc-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates the topic through the controller broker so the first
// produce does not race topic auto-creation.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func readUpdate(ctx context.Context, t *testing.T, consumer *kafkago.Reader) (domain.DatasetUpdate, kafkago.Message) {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from notify topic")

	var update domain.DatasetUpdate
	require.NoError(t, json.Unmarshal(msg.Value, &update))
	return update, msg
}

// TestNotifierRoundTrip verifies the notifier publishes dataset updates that
// a plain consumer can decode.
func TestNotifierRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testNotifyTopic)

	cfg := &config.Config{
		KafkaBrokers:     []string{broker},
		KafkaNotifyTopic: testNotifyTopic,
	}

	notifier := kafkaadapter.NewNotifier(cfg, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	sent := domain.DatasetUpdate{
		Platform:        "cp01cnsm",
		Deployment:      "D00013",
		Instrument:      "ctdbp1",
		File:            "/proc/cp01cnsm/D00013/ctdbp1/20180812.ctdbp1.nc",
		Samples:         96,
		ProcessingLevel: domain.LevelProcessed,
		UpdatedAt:       time.Date(2018, 8, 13, 6, 0, 0, 0, time.UTC),
	}
	require.NoError(t, notifier.Notify(ctx, sent))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testNotifyTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, msg := readUpdate(ctx, t, consumer)
	assert.Equal(t, sent, got)
	assert.Equal(t, "cp01cnsm/D00013/ctdbp1", string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "ctdbp1", headers["instrument"])
	_, err := time.Parse(time.RFC3339, headers["updated_at"])
	assert.NoError(t, err)
}

// TestBatchRunPublishesUpdates wires the real runner, NetCDF writer, and
// notifier together and verifies one update per written dataset.
func TestBatchRunPublishesUpdates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testNotifyTopic)

	rawRoot := t.TempDir()
	procRoot := t.TempDir()
	gpsDir := filepath.Join(rawRoot, "cp01cnsm", "D00013", "gps")
	require.NoError(t, os.MkdirAll(gpsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(gpsDir, "20180812.gps.json"), []byte(`{
		"time": [1534032000, 1534032060],
		"latitude": [40.13, 40.14],
		"longitude": [-70.77, -70.78]
	}`), 0o644))

	cfg := &config.Config{
		RawRoot:          rawRoot,
		ProcRoot:         procRoot,
		KafkaBrokers:     []string{broker},
		KafkaNotifyTopic: testNotifyTopic,
	}

	notifier := kafkaadapter.NewNotifier(cfg, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	metrics := observability.NewMetricsForTesting()
	runner := pipeline.NewRunner(cfg,
		instrument.NewRegistry(nil, metrics, discardLogger()),
		netcdf.Write, notifier, discardLogger(), metrics)

	m := &config.Mooring{
		Mooring:    "cp01cnsm",
		Deployment: "D00013",
		Latitude:   40.1334,
		Longitude:  -70.7785,
		Assemblies: []config.Assembly{
			{Name: "buoy", Instruments: []config.Instrument{{Class: "gps"}}},
		},
	}
	require.NoError(t, runner.Run(ctx, m, pipeline.Filter{}))

	outPath := filepath.Join(procRoot, "cp01cnsm", "D00013", "gps", "20180812.gps.nc")
	_, err := os.Stat(outPath)
	require.NoError(t, err, "NetCDF file written")

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testNotifyTopic,
		GroupID:     fmt.Sprintf("test-batch-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got, _ := readUpdate(ctx, t, consumer)
	assert.Equal(t, "cp01cnsm", got.Platform)
	assert.Equal(t, "gps", got.Instrument)
	assert.Equal(t, outPath, got.File)
	assert.Equal(t, 2, got.Samples)
	assert.Equal(t, domain.LevelParsed, got.ProcessingLevel)
}
