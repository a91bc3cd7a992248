package flagsteg

import (
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	flagExt    = ".png"
	numWorkers = 10
)

var errSkip = errors.New("skipped")

func (m *FlagSteg) findFiles(ctx context.Context, base string, match func(string) bool) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || !match(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (m *FlagSteg) fileWorker(ctx context.Context, in <-chan string, fn func(string) error) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for {
			select {
			case file, ok := <-in:
				if !ok {
					return
				}
				if err := fn(file); err != nil && err != errSkip {
					errc <- err
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (m *FlagSteg) walk(path string, match func(string) bool, fn func(string) error) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := m.findFiles(ctx, dir, match)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < numWorkers; i++ {
		errc, err := m.fileWorker(ctx, files, fn)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}

func isFlag(file string) bool {
	return strings.EqualFold(filepath.Ext(file), flagExt)
}

func (m *FlagSteg) encodeFile(file string) error {
	payload, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}

	if n := len(payload) << 1; n > m.flag.Capacity() {
		m.logger.Printf("Skipping \"%s\", needs %d data pixels but flag holds %d\n", file, n, m.flag.Capacity())
		return errSkip
	}

	b, err := m.flag.Encode(payload)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(file+flagExt, b, 0644)
}

func (m *FlagSteg) decodeFile(file string) error {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return err
	}

	if !m.flag.IsValid(b) {
		m.logger.Printf("Skipping \"%s\", not a valid %s flag\n", file, m.flag.Name())
		return errSkip
	}

	payload, err := m.flag.Decode(b)
	if err != nil {
		return err
	}

	// Never replace an existing file
	target := strings.TrimSuffix(file, filepath.Ext(file))
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			m.logger.Printf("Skipping \"%s\", \"%s\" already exists\n", file, target)
			return errSkip
		}
		return err
	}
	defer f.Close()

	if _, err = f.Write(payload); err != nil {
		return err
	}

	return f.Close()
}

// EncodeTree encodes every file under path into a flag written alongside
// it with a .png suffix. Files too big for the flag are skipped.
func (m *FlagSteg) EncodeTree(path string) error {
	return m.walk(path, func(file string) bool { return !isFlag(file) }, m.encodeFile)
}

// DecodeTree decodes every flag under path, writing the payload to the
// same name without the .png suffix. Images that don't look like flags, and
// flags whose payload file already exists, are skipped.
func (m *FlagSteg) DecodeTree(path string) error {
	return m.walk(path, isFlag, m.decodeFile)
}
