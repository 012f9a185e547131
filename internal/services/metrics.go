package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// friendAcceptRollbacks counts accepts undone after an edge write failed.
	// Labels: result (ok, forward, failed). forward means the reset failed and
	// the friendship was completed instead.
	friendAcceptRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afterthedoll",
		Subsystem: "friends",
		Name:      "accept_rollbacks_total",
		Help:      "Friend request accepts rolled back after a partial write",
	}, []string{"result"})

	asymmetricFriendships = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "afterthedoll",
		Subsystem: "friends",
		Name:      "asymmetric_total",
		Help:      "Friend pairs found with only one direction stored",
	})

	// lastReplyFailures counts replies stored without their thread's last reply time.
	// Labels: mode (monotonic, literal)
	lastReplyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "afterthedoll",
		Subsystem: "forum",
		Name:      "last_reply_failures_total",
		Help:      "Replies whose thread last_reply_at update failed",
	}, []string{"mode"})
)
