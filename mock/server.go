// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) Lothar May

package mock

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"daisychart/brokers/daisy"
	"daisychart/candles"
	"daisychart/logger"
	"daisychart/metrics"
	"daisychart/stockapi"
	"daisychart/stockval"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTicker      = "TSLA"
	DefaultStart       = "2024-01-01"
	DefaultPeriod      = "2d"
	DefaultTicksPerBar = 3
	subscriberBuffer   = 16
	maxLiveHistory     = 500
	writeTimeout       = 5 * time.Second
)

var ErrBadQuery = errors.New("bad query")

var periodRegex = regexp.MustCompile(`^([1-9][0-9]*)(d|wk|mo|y)$`)

type liveStream struct {
	interval candles.Interval
	strategy stockval.StrategyParams
	walk     *walk
	bars     []Bar
	ticks    int
}

// Server serves generated series in the format of the analysis service.
// Live bars are emitted to all websocket subscribers on a cron schedule.
type Server struct {
	generator   *Generator
	metrics     *metrics.Metrics
	router      *mux.Router
	upgrader    websocket.Upgrader
	subscribers *stockapi.RealtimeChanMap[[]byte]
	cron        *cron.Cron
	emitEvery   time.Duration
	ticksPerBar int
	log         *logrus.Entry
	now         func() time.Time

	streamsMutex sync.Mutex
	streams      map[string]*liveStream
	done         chan struct{}
	stopOnce     sync.Once
}

func NewServer(g *Generator, m *metrics.Metrics, emitEvery time.Duration) *Server {
	s := &Server{
		generator:   g,
		metrics:     m,
		router:      mux.NewRouter(),
		subscribers: stockapi.NewRealtimeChanMap[[]byte](subscriberBuffer),
		cron:        cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		emitEvery:   emitEvery,
		ticksPerBar: DefaultTicksPerBar,
		log:         logger.WithComponent("mock"),
		now:         time.Now,
		streams:     make(map[string]*liveStream),
		done:        make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.router.HandleFunc("/api/ohlc", s.handleSeries).Methods(http.MethodGet)
	s.router.HandleFunc("/api/ohlc/recent", s.handleRecent).Methods(http.MethodGet)
	s.router.HandleFunc("/api/ws", s.handleStream).Methods(http.MethodGet)
	if m != nil {
		s.router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start schedules live bar emission.
func (s *Server) Start() error {
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.emitEvery), s.Emit); err != nil {
		return fmt.Errorf("schedule bar emission: %w", err)
	}
	s.cron.Start()
	s.log.WithField("every", s.emitEvery).Info("bar emission started")
	return nil
}

// Stop ends bar emission and disconnects all subscribers.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		close(s.done)
		s.subscribers.ClearPendingClose()
	})
}

func (s *Server) Subscribers() int {
	return s.subscribers.Len()
}

// Emit advances every live stream by one tick and sends the current bar.
func (s *Server) Emit() {
	s.streamsMutex.Lock()
	for id, ls := range s.streams {
		ls.advance(s.generator, s.ticksPerBar)
		records := Annotate(ls.bars, ls.strategy)
		msg, err := barMessage(records[len(records)-1])
		if err != nil {
			s.log.WithError(err).Error("cannot encode bar")
			continue
		}
		if err := s.subscribers.AddNewData(id, msg); err != nil {
			s.log.WithError(err).Warn("slow subscriber")
		}
		s.metrics.BarServed()
	}
	s.streamsMutex.Unlock()
	s.subscribers.ClearPendingClose()
}

// advance either moves the forming bar or starts the next one.
func (ls *liveStream) advance(g *Generator, ticksPerBar int) {
	last := len(ls.bars) - 1
	if ls.ticks+1 < ticksPerBar {
		ls.bars[last] = ls.walk.tick(ls.bars[last])
		ls.ticks++
		return
	}
	next := g.calendar.NextBarTime(ls.bars[last].Time, ls.interval)
	ls.bars = append(ls.bars, ls.walk.next(next))
	if len(ls.bars) > maxLiveHistory {
		ls.bars = ls.bars[len(ls.bars)-maxLiveHistory:]
	}
	ls.ticks = 0
}

func barMessage(r daisy.Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return json.Marshal(daisy.StreamMessage{Type: daisy.MessageTypeBar, Data: data})
}

func snapshotMessage(records []daisy.Record) ([]byte, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	return json.Marshal(daisy.StreamMessage{Type: daisy.MessageTypeSnapshot, Data: data})
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) writeJson(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("cannot write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.writeJson(w, http.StatusBadRequest, errorResponse{Detail: err.Error()})
}

func queryString(q map[string][]string, key, def string) string {
	if v, ok := q[key]; ok && len(v) > 0 && v[0] != "" {
		return v[0]
	}
	return def
}

type seriesQuery struct {
	ticker   string
	interval candles.Interval
	strategy stockval.StrategyParams
}

func parseSeriesQuery(q map[string][]string, defInterval candles.Interval) (seriesQuery, error) {
	sq := seriesQuery{
		ticker:   stockval.NormalizeTicker(queryString(q, "ticker", DefaultTicker)),
		strategy: stockval.DefaultStrategyParams(),
	}
	if !stockval.IsValidTicker(sq.ticker) {
		return sq, fmt.Errorf("%w: ticker %q", ErrBadQuery, sq.ticker)
	}
	interval, err := candles.ParseInterval(queryString(q, "interval", defInterval.String()))
	if err != nil {
		return sq, fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	sq.interval = interval
	sq.strategy.Name = queryString(q, "strategy", sq.strategy.Name)
	if sq.strategy.Lookback, err = strconv.Atoi(queryString(q, "brk_lookback", strconv.Itoa(sq.strategy.Lookback))); err != nil {
		return sq, fmt.Errorf("%w: brk_lookback: %w", ErrBadQuery, err)
	}
	if sq.strategy.Confirm, err = strconv.Atoi(queryString(q, "brk_confirm", strconv.Itoa(sq.strategy.Confirm))); err != nil {
		return sq, fmt.Errorf("%w: brk_confirm: %w", ErrBadQuery, err)
	}
	tol := queryString(q, "brk_tolerance", strconv.FormatFloat(sq.strategy.Tolerance, 'f', -1, 64))
	if sq.strategy.Tolerance, err = strconv.ParseFloat(tol, 64); err != nil {
		return sq, fmt.Errorf("%w: brk_tolerance: %w", ErrBadQuery, err)
	}
	if err = sq.strategy.Validate(); err != nil {
		return sq, fmt.Errorf("%w: %w", ErrBadQuery, err)
	}
	return sq, nil
}

// RecentStart returns the start of a look-back period ending at now.
// Day periods count trading days.
func (g *Generator) RecentStart(now time.Time, period string) (time.Time, error) {
	m := periodRegex.FindStringSubmatch(period)
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: period %q", ErrBadQuery, period)
	}
	n, _ := strconv.Atoi(m[1])
	y, mo, d := now.Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	switch m[2] {
	case "d":
		days := g.calendar.TradingDays(today.AddDate(0, 0, -2*n-10), now)
		if len(days) == 0 {
			return today, nil
		}
		return days[max(len(days)-n, 0)], nil
	case "wk":
		return today.AddDate(0, 0, -7*n), nil
	case "mo":
		return today.AddDate(0, -n, 0), nil
	default:
		return today.AddDate(-n, 0, 0), nil
	}
}

func (s *Server) respondSeries(w http.ResponseWriter, sq seriesQuery, start, end time.Time) {
	bars := s.generator.Bars(sq.ticker, sq.interval, s.generator.BarTimes(sq.interval, start, end))
	s.writeJson(w, http.StatusOK, daisy.SeriesResponse{
		Ticker: sq.ticker,
		Data:   Annotate(bars, sq.strategy),
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sq, err := parseSeriesQuery(q, candles.OneDay)
	if err != nil {
		s.writeError(w, err)
		return
	}
	now := s.now()
	start, err := time.Parse(stockapi.DateLayout, queryString(q, "start", DefaultStart))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: start: %w", ErrBadQuery, err))
		return
	}
	end, err := time.Parse(stockapi.DateLayout, queryString(q, "end", now.Format(stockapi.DateLayout)))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: end: %w", ErrBadQuery, err))
		return
	}
	if end.Before(start) {
		y, m, d := now.Date()
		end = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	s.respondSeries(w, sq, start, end.Add(24*time.Hour-time.Nanosecond))
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sq, err := parseSeriesQuery(q, candles.OneMinute)
	if err != nil {
		s.writeError(w, err)
		return
	}
	now := s.now()
	start, err := s.generator.RecentStart(now, queryString(q, "period", DefaultPeriod))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.respondSeries(w, sq, start, now)
}

func (s *Server) newLiveStream(sq seriesQuery) (*liveStream, error) {
	period := DefaultPeriod
	if !sq.interval.IsIntraday() {
		period = "1y"
	}
	now := s.now()
	start, err := s.generator.RecentStart(now, period)
	if err != nil {
		return nil, err
	}
	times := s.generator.BarTimes(sq.interval, start, now)
	if len(times) == 0 {
		times = []time.Time{s.generator.calendar.NextBarTime(now, sq.interval)}
	}
	if len(times) > maxLiveHistory {
		times = times[len(times)-maxLiveHistory:]
	}
	bars, w := s.generator.bars(sq.ticker, sq.interval, times)
	return &liveStream{interval: sq.interval, strategy: sq.strategy, walk: w, bars: bars}, nil
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sq, err := parseSeriesQuery(r.URL.Query(), candles.OneMinute)
	if err != nil {
		s.writeError(w, err)
		return
	}
	ls, err := s.newLiveStream(sq)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snapshot, err := snapshotMessage(Annotate(ls.bars, ls.strategy))
	if err != nil {
		s.writeJson(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"subscriber": id, "ticker": sq.ticker, "interval": sq.interval})
	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		log.WithError(err).Warn("cannot send snapshot")
		return
	}
	ch, err := s.subscribers.Subscribe(id)
	if err != nil {
		log.WithError(err).Error("cannot subscribe")
		return
	}
	s.streamsMutex.Lock()
	s.streams[id] = ls
	s.streamsMutex.Unlock()
	log.Info("subscriber connected")
	defer func() {
		s.streamsMutex.Lock()
		delete(s.streams, id)
		s.streamsMutex.Unlock()
		_ = s.subscribers.Unsubscribe(id)
		log.Info("subscriber disconnected")
	}()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.WithError(err).Warn("cannot send bar")
				return
			}
		case <-closed:
			return
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(time.Second))
			return
		}
	}
}
