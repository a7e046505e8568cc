package status

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "g711_sessions_started_total",
		Help: "Total number of sessions started.",
	})
	sessionsEnded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "g711_sessions_ended_total",
		Help: "Total number of sessions ended.",
	})
	heartbeats = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "g711_heartbeat_total",
		Help: "Total number of heartbeat messages.",
	})
	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "g711_sessions_active",
		Help: "Current number of active sessions.",
	})
	framesTranscoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "g711_frames_transcoded_total",
		Help: "Total number of frames transcoded.",
	}, []string{"law", "direction"})
	samplesTranscoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "g711_samples_transcoded_total",
		Help: "Total number of samples transcoded.",
	}, []string{"law", "direction"})
	rtpPackets = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "g711_rtp_packets_received_total",
		Help: "Total number of RTP packets received.",
	})
	rtpStreams = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "g711_rtp_streams_total",
		Help: "Total number of RTP streams that became active.",
	})
	audioFramesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "g711_audio_frames_dropped_total",
		Help: "Total number of audio frames dropped.",
	})
)

func init() {
	prometheus.MustRegister(
		sessionsStarted, sessionsEnded, heartbeats, activeSessions,
		framesTranscoded, samplesTranscoded, rtpPackets, rtpStreams, audioFramesDropped,
	)
}

func RecordSessionStarted() {
	sessionsStarted.Inc()
	activeSessions.Inc()
}

func RecordSessionEnded() {
	sessionsEnded.Inc()
	activeSessions.Dec()
}

func RecordHeartbeat(sessionCount int) {
	heartbeats.Inc()
	activeSessions.Set(float64(sessionCount))
}

func RecordFrameTranscoded(law, direction string, samples int) {
	framesTranscoded.WithLabelValues(law, direction).Inc()
	samplesTranscoded.WithLabelValues(law, direction).Add(float64(samples))
}

func RecordRTPPacket() {
	rtpPackets.Inc()
}

func RecordRTPStream() {
	rtpStreams.Inc()
}

func RecordAudioFrameDropped() {
	audioFramesDropped.Inc()
}
