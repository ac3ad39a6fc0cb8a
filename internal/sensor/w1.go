package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// DefaultW1Dir is where the Linux w1_therm driver exposes devices.
const DefaultW1Dir = "/sys/bus/w1/devices"

// DS18B20 family prefix.
const w1ThermPrefix = "28-"

// W1Bus reads DS18B20 probes through the w1_therm sysfs files.
type W1Bus struct {
	dir string
}

func NewW1Bus(dir string) *W1Bus {
	if dir == "" {
		dir = DefaultW1Dir
	}
	return &W1Bus{dir: dir}
}

func (b *W1Bus) ListAvailable(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches, err := filepath.Glob(filepath.Join(b.dir, w1ThermPrefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("list w1 devices: %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, filepath.Base(m))
	}
	sort.Strings(ids)
	return ids, nil
}

// Read parses w1_slave:
//
//	72 01 4b 46 7f ff 0e 10 57 : crc=57 YES
//	72 01 4b 46 7f ff 0e 10 57 t=23125
func (b *W1Bus) Read(ctx context.Context, id string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f, err := os.Open(filepath.Join(b.dir, id, "w1_slave"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return 0, fmt.Errorf("open %s: %w", id, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, fmt.Errorf("%s: %w", id, ErrBadFormat)
	}
	if !strings.HasSuffix(strings.TrimSpace(sc.Text()), "YES") {
		return 0, fmt.Errorf("%s: %w", id, ErrNotReady)
	}
	if !sc.Scan() {
		return 0, fmt.Errorf("%s: %w", id, ErrBadFormat)
	}
	_, raw, ok := strings.Cut(sc.Text(), "t=")
	if !ok {
		return 0, fmt.Errorf("%s: %w", id, ErrBadFormat)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: %w: %v", id, ErrBadFormat, err)
	}
	return float64(milli) / 1000, nil
}
