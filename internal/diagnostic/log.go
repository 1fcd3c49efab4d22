package diagnostic

import "sync"

// Log collects diagnostics from concurrent workers during an import run.
// The zero value is ready to use.
type Log struct {
	mu    sync.Mutex
	diags Diagnostics
	echo  func(Diagnostic)
}

// NewLog creates a Log. If echo is non-nil it is called for every diagnostic
// as it is added, under the log's lock.
func NewLog(echo func(Diagnostic)) *Log {
	return &Log{echo: echo}
}

// Error adds an error diagnostic.
func (l *Log) Error(code, message, typePair, fieldPath string) {
	l.add(Diagnostic{SeverityError, code, message, typePair, fieldPath})
}

// Warning adds a warning diagnostic.
func (l *Log) Warning(code, message, typePair, fieldPath string) {
	l.add(Diagnostic{SeverityWarning, code, message, typePair, fieldPath})
}

// Info adds an info diagnostic.
func (l *Log) Info(code, message, typePair, fieldPath string) {
	l.add(Diagnostic{SeverityInfo, code, message, typePair, fieldPath})
}

// Merge adds every diagnostic of d.
func (l *Log) Merge(d Diagnostics) {
	for _, diag := range d.All() {
		l.add(diag)
	}
}

// Snapshot returns a copy of the collected diagnostics.
func (l *Log) Snapshot() Diagnostics {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out Diagnostics
	out.Merge(l.diags)

	return out
}

func (l *Log) add(d Diagnostic) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.diags.add(d)

	if l.echo != nil {
		l.echo(d)
	}
}
