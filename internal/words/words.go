// Word list for target selection.
//
// Loads the list once: from the file named by WORDS_FILE when set, otherwise
// from the embedded default list. Entries are normalized to uppercase and
// anything that is not exactly five letters is dropped.
package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"

	"wordduel/internal/game"
)

//go:embed default_words.txt
var embeddedWords string

var (
	initOnce sync.Once
	list     []string
	initErr  error
)

// Init loads the word list exactly once. Returns an error if no usable
// five-letter words remain after filtering.
func Init() error {
	initOnce.Do(func() {
		if path := os.Getenv("WORDS_FILE"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				initErr = err
				return
			}
			defer f.Close()
			list = parse(bufio.NewScanner(f))
		} else {
			list = parse(bufio.NewScanner(strings.NewReader(embeddedWords)))
		}
		if len(list) == 0 {
			initErr = errors.New("word list empty after filtering")
		}
	})
	return initErr
}

func parse(sc *bufio.Scanner) []string {
	var out []string
	for sc.Scan() {
		w := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if game.IsValidWord(w) {
			out = append(out, w)
		}
	}
	return out
}

// Random returns a uniformly chosen target word. Init must have succeeded.
func Random() string {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		// crypto/rand only fails when the platform source is broken.
		return list[0]
	}
	return list[n.Int64()]
}

// Count reports the number of loaded words.
func Count() int { return len(list) }

// resetForTest clears loader state so tests can exercise Init paths.
func resetForTest() {
	initOnce = sync.Once{}
	list = nil
	initErr = nil
}
