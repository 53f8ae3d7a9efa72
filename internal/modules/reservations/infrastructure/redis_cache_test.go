package infrastructure

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"mesaYaPos/internal/modules/reservations/domain"
)

// respServer answers the RESP2 subset the cache uses: GET, SET, DEL and
// WATCH/MULTI/EXEC. Anything else gets an error reply, which go-redis tolerates
// for its connection handshake.
type respServer struct {
	ln       net.Listener
	mu       sync.Mutex
	data     map[string]string
	versions map[string]int
}

func startRESPServer(t *testing.T) *respServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &respServer{ln: ln, data: map[string]string{}, versions: map[string]int{}}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go s.serve(conn)
		}
	}()
	t.Cleanup(func() { _ = ln.Close() })
	return s
}

func (s *respServer) client(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: s.ln.Addr().String()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func (s *respServer) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *respServer) put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.versions[key]++
}

func (s *respServer) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	var watched map[string]int
	var queued [][]string
	inMulti := false

	for {
		args, err := readRESPCommand(r)
		if err != nil {
			return
		}
		name := strings.ToUpper(args[0])

		var reply string
		switch {
		case name == "MULTI":
			inMulti, queued = true, nil
			reply = "+OK\r\n"
		case name == "EXEC":
			s.mu.Lock()
			aborted := false
			for key, version := range watched {
				if s.versions[key] != version {
					aborted = true
				}
			}
			if aborted {
				reply = "*-1\r\n"
			} else {
				var b strings.Builder
				b.WriteString("*" + strconv.Itoa(len(queued)) + "\r\n")
				for _, cmd := range queued {
					b.WriteString(s.execLocked(cmd))
				}
				reply = b.String()
			}
			s.mu.Unlock()
			inMulti, queued, watched = false, nil, nil
		case inMulti:
			queued = append(queued, args)
			reply = "+QUEUED\r\n"
		case name == "WATCH":
			s.mu.Lock()
			if watched == nil {
				watched = map[string]int{}
			}
			for _, key := range args[1:] {
				watched[key] = s.versions[key]
			}
			s.mu.Unlock()
			reply = "+OK\r\n"
		case name == "UNWATCH":
			watched = nil
			reply = "+OK\r\n"
		default:
			s.mu.Lock()
			reply = s.execLocked(args)
			s.mu.Unlock()
		}

		if _, err := w.WriteString(reply); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

func (s *respServer) execLocked(args []string) string {
	switch strings.ToUpper(args[0]) {
	case "PING":
		return "+PONG\r\n"
	case "GET":
		v, ok := s.data[args[1]]
		if !ok {
			return "$-1\r\n"
		}
		return "$" + strconv.Itoa(len(v)) + "\r\n" + v + "\r\n"
	case "SET":
		s.data[args[1]] = args[2]
		s.versions[args[1]]++
		return "+OK\r\n"
	case "DEL":
		deleted := 0
		for _, key := range args[1:] {
			if _, ok := s.data[key]; ok {
				delete(s.data, key)
				s.versions[key]++
				deleted++
			}
		}
		return ":" + strconv.Itoa(deleted) + "\r\n"
	default:
		return fmt.Sprintf("-ERR unknown command '%s'\r\n", args[0])
	}
}

func readRESPCommand(r *bufio.Reader) ([]string, error) {
	header, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	header = strings.TrimRight(header, "\r\n")
	if !strings.HasPrefix(header, "*") {
		return nil, fmt.Errorf("unexpected header %q", header)
	}
	n, err := strconv.Atoi(header[1:])
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad array length %q", header)
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimRight(line, "\r\n")[1:])
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func cachedReservation(status domain.ReservationStatus, updatedAt time.Time) *domain.Reservation {
	return &domain.Reservation{
		ID:              "res-1",
		RestaurantID:    "rest-a",
		TableID:         "t1",
		CustomerName:    "Ana Torres",
		ReservationTime: time.Date(2026, 7, 4, 19, 0, 0, 0, time.UTC),
		Status:          status,
		UpdatedAt:       updatedAt,
	}
}

func TestRedisCacheRoundTrip(t *testing.T) {
	server := startRESPServer(t)
	cache := NewRedisCache(server.client(t), time.Minute, "mesaya")
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "res-1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	at := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	cache.Set(ctx, cachedReservation(domain.ReservationStatusPending, at))
	if _, ok := server.value("mesaya:reservation:res-1"); !ok {
		t.Fatal("expected entry under prefixed key")
	}

	got, ok := cache.Get(ctx, "res-1")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.RestaurantID != "rest-a" || got.Status != domain.ReservationStatusPending || !got.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected cached reservation %+v", got)
	}

	cache.Invalidate(ctx, "res-1")
	if _, ok := cache.Get(ctx, "res-1"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestRedisCacheKeepsNewerEntry(t *testing.T) {
	server := startRESPServer(t)
	cache := NewRedisCache(server.client(t), time.Minute, "mesaya")
	ctx := context.Background()

	at := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	cache.Set(ctx, cachedReservation(domain.ReservationStatusConfirmed, at.Add(time.Minute)))
	cache.Set(ctx, cachedReservation(domain.ReservationStatusPending, at))

	got, ok := cache.Get(ctx, "res-1")
	if !ok || got.Status != domain.ReservationStatusConfirmed {
		t.Fatalf("expected newer confirmed entry to survive, got %+v", got)
	}

	cache.Set(ctx, cachedReservation(domain.ReservationStatusSeated, at.Add(2*time.Minute)))
	got, ok = cache.Get(ctx, "res-1")
	if !ok || got.Status != domain.ReservationStatusSeated {
		t.Fatalf("expected newer write to replace entry, got %+v", got)
	}
}

func TestRedisCacheDropsCorruptEntry(t *testing.T) {
	server := startRESPServer(t)
	cache := NewRedisCache(server.client(t), time.Minute, "mesaya")
	server.put("mesaya:reservation:res-1", "{not json")

	if _, ok := cache.Get(context.Background(), "res-1"); ok {
		t.Fatal("corrupt entry must read as a miss")
	}
	if _, ok := server.value("mesaya:reservation:res-1"); ok {
		t.Fatal("corrupt entry must be deleted")
	}
}

func TestRedisCacheOverwritesCorruptEntry(t *testing.T) {
	server := startRESPServer(t)
	cache := NewRedisCache(server.client(t), time.Minute, "mesaya")
	server.put("mesaya:reservation:res-1", "{not json")

	cache.Set(context.Background(), cachedReservation(domain.ReservationStatusPending, time.Now().UTC()))
	if got, ok := cache.Get(context.Background(), "res-1"); !ok || got.Status != domain.ReservationStatusPending {
		t.Fatalf("expected set to replace corrupt entry, got %+v", got)
	}
}
