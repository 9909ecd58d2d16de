package sinks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"flightsim/logging"
)

// DataRow is the payload shape data.csv rows are built from, per spec.md
// §6's fixed column order.
type DataRow struct {
	Time       float64
	Position   float64
	Velocity   float64
	Acc        float64
	Throttle   float64
	Brake      float64
	Thrust     float64
	Drag       float64
	BrakeForce float64
}

// CSV writes output/data.csv: a header row followed by one row per tick the
// recorder observes, dropping any row whose Time does not strictly increase
// over the last written row.
type CSV struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	fallback *log.Logger
	lastTime float64
	haveLast bool
}

// NewCSV constructs a CSV sink writing to w and writes the header row
// immediately, per spec.md §6 ("header is written on initialization"), so
// even a run that produces no rows leaves a header-only file behind.
func NewCSV(w io.Writer, fallback *log.Logger) *CSV {
	if w == nil {
		w = io.Discard
	}
	c := &CSV{writer: bufio.NewWriter(w), fallback: fallback}
	c.writer.WriteString("time,position,velocity,acc,throttle,brake,thrust,drag,brake_force\n")
	c.writer.Flush()
	return c
}

func (c *CSV) Write(event logging.Event) error {
	row, ok := event.Payload.(DataRow)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.haveLast && row.Time <= c.lastTime {
		if c.fallback != nil {
			c.fallback.Printf("csv sink: dropping non-monotone row t=%v (last=%v)", row.Time, c.lastTime)
		}
		return nil
	}

	_, err := fmt.Fprintf(c.writer, "%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f\n",
		row.Time, row.Position, row.Velocity, row.Acc, row.Throttle, row.Brake, row.Thrust, row.Drag, row.BrakeForce)
	if err != nil {
		return err
	}

	c.lastTime = row.Time
	c.haveLast = true
	return c.writer.Flush()
}

func (c *CSV) Close(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writer.Flush()
}
