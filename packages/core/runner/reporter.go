package runner

import (
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
)

// Reporter receives progress events while a file runs.
type Reporter interface {
	RunStarted(file string, at time.Time)
	RequestStarted(id int, req *parser.Request)
	RequestFinished(result *RequestResult)
	Waiting(w *parser.Wait)
	Message(msg string)
}

type nopReporter struct{}

func (nopReporter) RunStarted(string, time.Time) {}
func (nopReporter) RequestStarted(int, *parser.Request) {}
func (nopReporter) RequestFinished(*RequestResult) {}
func (nopReporter) Waiting(*parser.Wait) {}
func (nopReporter) Message(string) {}
