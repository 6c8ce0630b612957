package metrics

// RecordHeartbeat counts a heartbeat by outcome
func (m *Metrics) RecordHeartbeat(success bool) {
	m.safeExecute("RecordHeartbeat", func() {
		result := "success"
		if !success {
			result = "failure"
		}
		m.HeartbeatsTotal.WithLabelValues(result).Inc()
	})
}

// AddReaped adds deleted stale records to the reaper counter
func (m *Metrics) AddReaped(count int64) {
	m.safeExecute("AddReaped", func() {
		if count > 0 {
			m.PresenceReapedTotal.Add(float64(count))
		}
	})
}

// ObserveOnlineSet records the size of an online-set read
func (m *Metrics) ObserveOnlineSet(size int) {
	m.safeExecute("ObserveOnlineSet", func() {
		m.OnlineSetSize.Observe(float64(size))
	})
}

// SetPresenceRecordsTotal sets the stored presence records gauge
func (m *Metrics) SetPresenceRecordsTotal(count int64) {
	m.safeExecute("SetPresenceRecordsTotal", func() {
		m.PresenceRecordsTotal.Set(float64(count))
	})
}

// SetActiveWorkspaces sets the active workspaces gauge
func (m *Metrics) SetActiveWorkspaces(count int64) {
	m.safeExecute("SetActiveWorkspaces", func() {
		m.ActiveWorkspaces.Set(float64(count))
	})
}

// StreamOpened increments the open event streams gauge
func (m *Metrics) StreamOpened() {
	m.safeExecute("StreamOpened", func() {
		m.EventStreamsActive.Inc()
	})
}

// StreamClosed decrements the open event streams gauge
func (m *Metrics) StreamClosed() {
	m.safeExecute("StreamClosed", func() {
		m.EventStreamsActive.Dec()
	})
}

// RecordNotifierEvent counts a published change notification
func (m *Metrics) RecordNotifierEvent(topic, eventType string, err error) {
	m.safeExecute("RecordNotifierEvent", func() {
		if err != nil {
			m.NotifierPublishErrors.WithLabelValues(topic).Inc()
			return
		}
		m.NotifierEventsTotal.WithLabelValues(topic, eventType).Inc()
	})
}

// IncrementItemCreated counts a created workspace item
func (m *Metrics) IncrementItemCreated(itemType string) {
	m.safeExecute("IncrementItemCreated", func() {
		m.ItemsCreatedTotal.WithLabelValues(itemType).Inc()
	})
}

// RecordRecipeSuggestion counts a recipe suggestion request by result
func (m *Metrics) RecordRecipeSuggestion(result string) {
	m.safeExecute("RecordRecipeSuggestion", func() {
		m.RecipeSuggestionsTotal.WithLabelValues(result).Inc()
	})
}
