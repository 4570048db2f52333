package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickwarner/seamlessads/internal/config"
	"github.com/patrickwarner/seamlessads/internal/db"
	"github.com/patrickwarner/seamlessads/internal/models"
	"github.com/patrickwarner/seamlessads/internal/observability"
	"github.com/patrickwarner/seamlessads/internal/personas"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	server    string
	totalReq  int
	conc      int
	duration  time.Duration
	rate      float64
	jitter    float64
	stats     bool
	flush     bool
	redisAddr string
	debug     bool
	withTrace bool
)

var logger *zap.Logger

var httpClient *http.Client

const statsInterval = 5 * time.Second

var (
	countSent     uint64
	countSuccess  uint64
	countRejected uint64
	countErrors   uint64
)

// productCounts tallies selected product keys.
var productCounts sync.Map

type recommendReq struct {
	Scene   models.SceneMetadata `json:"scene"`
	UserKey string               `json:"user_key"`
	Debug   bool                 `json:"debug,omitempty"`
}

func obj(label string, conf float64) models.DetectedObject {
	return models.DetectedObject{Label: label, Confidence: conf, BBox: []float64{0.2, 0.3, 0.15, 0.15}}
}

// scenes is the scene mix sent to the server; each one favors a different
// selection rule.
var scenes = []models.SceneMetadata{
	{
		SceneID: "sim_basement_pizza", TimestampRange: []float64{60, 75},
		DetectedObjects: []models.DetectedObject{obj("pizza", 0.92), obj("couch", 0.81)},
		SceneTags:       []string{"friends", "game_night"}, DialogueKeywords: []string{"cheesy"},
	},
	{
		SceneID: "sim_diner_soda", TimestampRange: []float64{300, 318},
		DetectedObjects: []models.DetectedObject{obj("soda can", 0.88)},
		SceneTags:       []string{"diner"}, DialogueKeywords: []string{"cola"},
	},
	{
		SceneID: "sim_lab_laptop", TimestampRange: []float64{900, 930},
		DetectedObjects: []models.DetectedObject{obj("laptop", 0.95)},
		SceneTags:       []string{"lab", "investigation"}, DialogueKeywords: []string{},
	},
	{
		SceneID: "sim_street", TimestampRange: []float64{1200, 1212},
		DetectedObjects: []models.DetectedObject{obj("bicycle", 0.7)},
		SceneTags:       []string{"suburb"}, DialogueKeywords: []string{},
	},
	{
		SceneID: "sim_empty", TimestampRange: []float64{1500, 1505},
		DetectedObjects: []models.DetectedObject{}, SceneTags: []string{}, DialogueKeywords: []string{},
	},
}

func main() {
	flag.StringVar(&server, "server", "http://localhost:8787", "seamless ads server base URL")
	flag.IntVar(&totalReq, "requests", 1000, "total requests to send")
	flag.IntVar(&conc, "concurrency", 20, "concurrent requests")
	flag.DurationVar(&duration, "duration", 0, "how long to run traffic (0 to disable)")
	flag.Float64Var(&rate, "rate", 0, "requests per second (0 for unlimited)")
	flag.Float64Var(&jitter, "jitter", 0.0, "random jitter factor for request spacing")
	flag.BoolVar(&stats, "stats", false, "print aggregated stats periodically")
	flag.BoolVar(&flush, "flush", false, "flush cached catalog searches and carts from redis before sending traffic")
	flag.StringVar(&redisAddr, "redis", "", "redis address (defaults to REDIS_ADDR)")
	flag.BoolVar(&debug, "debug", false, "enable verbose debug logs")
	flag.BoolVar(&withTrace, "trace", false, "request the selector trace with every recommendation")
	flag.Parse()

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	var err error
	logger, err = observability.InitLoggerWithLevel(level, "traffic-simulator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	httpClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ResponseHeaderTimeout: 10 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   conc,
			IdleConnTimeout:       90 * time.Second,
		},
	}

	if flush {
		flushRedis()
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	var rmu sync.Mutex
	keys := personas.Keys()

	var wg sync.WaitGroup
	sem := make(chan struct{}, conc)
	done := make(chan struct{})

	var baseInterval time.Duration
	if rate > 0 {
		baseInterval = time.Duration(float64(time.Second) / rate)
	} else if duration > 0 && totalReq > 0 {
		baseInterval = duration / time.Duration(totalReq)
	}

	if stats {
		go func() {
			ticker := time.NewTicker(statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					printStats()
				case <-done:
					return
				}
			}
		}()
	}

	start := time.Now()
	next := start
	for i := 0; ; i++ {
		if totalReq > 0 && i >= totalReq {
			break
		}
		if duration > 0 && time.Since(start) >= duration {
			break
		}
		if baseInterval > 0 {
			effective := baseInterval
			if jitter > 0 {
				jf := max(1+(r.Float64()*2-1)*jitter, 0.1)
				effective = time.Duration(float64(effective) * jf)
			}
			if now := time.Now(); now.Before(next) {
				time.Sleep(next.Sub(now))
			}
			next = next.Add(effective)
		}

		rmu.Lock()
		body := recommendReq{
			Scene:   scenes[r.Intn(len(scenes))],
			UserKey: keys[r.Intn(len(keys))],
			Debug:   withTrace,
		}
		rmu.Unlock()

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			send(body)
		}()
	}
	wg.Wait()
	close(done)

	printStats()
	logger.Info("traffic complete", zap.Duration("elapsed", time.Since(start)))
}

func send(body recommendReq) {
	atomic.AddUint64(&countSent, 1)
	blob, err := json.Marshal(body)
	if err != nil {
		atomic.AddUint64(&countErrors, 1)
		logger.Error("marshal error", zap.Error(err))
		return
	}

	resp, err := httpClient.Post(server+"/ads/recommend", "application/json", bytes.NewReader(blob))
	if err != nil {
		atomic.AddUint64(&countErrors, 1)
		logger.Debug("request error", zap.Error(err))
		return
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		var out models.AdResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			atomic.AddUint64(&countErrors, 1)
			logger.Debug("decode error", zap.Error(err))
			return
		}
		atomic.AddUint64(&countSuccess, 1)
		n, _ := productCounts.LoadOrStore(out.Overlay.SelectedProductKey, new(uint64))
		atomic.AddUint64(n.(*uint64), 1)
		logger.Debug("recommendation",
			zap.String("scene_id", out.SceneID),
			zap.String("user_key", body.UserKey),
			zap.String("product_key", out.Overlay.SelectedProductKey),
			zap.Int("results", len(out.Results)))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		atomic.AddUint64(&countRejected, 1)
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.Debug("rejected", zap.Int("status", resp.StatusCode), zap.ByteString("body", msg))
	default:
		atomic.AddUint64(&countErrors, 1)
		logger.Debug("server error", zap.Int("status", resp.StatusCode))
	}
}

func printStats() {
	fields := []zap.Field{
		zap.Uint64("sent", atomic.LoadUint64(&countSent)),
		zap.Uint64("success", atomic.LoadUint64(&countSuccess)),
		zap.Uint64("rejected", atomic.LoadUint64(&countRejected)),
		zap.Uint64("errors", atomic.LoadUint64(&countErrors)),
	}
	productCounts.Range(func(k, v any) bool {
		fields = append(fields, zap.Uint64("product_"+k.(string), atomic.LoadUint64(v.(*uint64))))
		return true
	})
	logger.Info("stats", fields...)
}

// flushRedis deletes cached catalog searches and carts. Persisted catalog
// rows in Postgres are left alone.
func flushRedis() {
	addr := redisAddr
	if addr == "" {
		addr = config.Load().RedisAddr
	}
	ctx := context.Background()
	store, err := db.InitRedis(ctx, addr)
	if err != nil {
		logger.Fatal("redis connect", zap.Error(err))
	}
	defer store.Close()

	flushed := 0
	for _, pattern := range []string{"catalog:search:*", "cart:*"} {
		keys, err := store.Client.Keys(ctx, pattern).Result()
		if err != nil {
			logger.Error("failed to get keys for pattern", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		if len(keys) == 0 {
			continue
		}
		if err := store.Client.Del(ctx, keys...).Err(); err != nil {
			logger.Error("failed to delete keys", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		flushed += len(keys)
	}
	logger.Info("redis cache flushed", zap.String("addr", addr), zap.Int("keys_deleted", flushed))
}
