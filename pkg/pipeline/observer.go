package pipeline

import (
	"context"
	"time"

	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

// Observer is notified when the filter it listens to completes.
type Observer interface {
	Notify(ctx context.Context)
}

// Link is the edge between a producing filter and the filter consuming its completion.
// A Link without target is the terminal edge of the chain: it ends the owning instance.
type Link struct {
	owner endpoint
	info  *model.LinkInfo
	in    Filter
	out   Filter
}

func newLink(owner endpoint, in, out Filter) *Link {
	info := &model.LinkInfo{Source: in.Info()}
	if out != nil {
		info.Target = out.Info()
	}

	return &Link{
		owner: owner,
		info:  info,
		in:    in,
		out:   out,
	}
}

// Info returns the identity of the link.
func (l *Link) Info() *model.LinkInfo {
	return l.info
}

// Notify dispatches the target filter, or the end of the instance for a terminal link.
// It never waits for the dispatched task.
func (l *Link) Notify(ctx context.Context) {
	fired := time.Now()

	if l.out == nil {
		l.owner.dispatch(model.EndFilter.Name, func() {
			l.owner.onLinkFired(l.info, time.Since(fired))
			l.owner.NotifyEnd()
		})

		return
	}

	l.owner.dispatch(l.out.Name(), func() {
		l.owner.onLinkFired(l.info, time.Since(fired))
		l.out.Execute(ctx)
	})
}

var _ Observer = (*Link)(nil)
