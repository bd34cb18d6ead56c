package dispatch

import "vexoj/internal/pipeline/model"

// Classification is the derived routing decision for one dispatch.
type Classification struct {
	Type     model.MessageType
	Priority model.Priority
}

// Classify maps the submission flags onto message type and queue priority.
// Type and priority are computed independently: a rejudge keeps its type but
// is always lowest priority, so rejudge floods never preempt fresh work.
func Classify(isTest, isUserTest, isRejudge bool) Classification {
	c := Classification{Type: model.MessageTypeJudge}
	switch {
	case isTest:
		c.Type = model.MessageTypeRun
	case isUserTest:
		c.Type = model.MessageTypeUserTestcase
	}

	switch {
	case isRejudge:
		c.Priority = model.PriorityLow
	case c.Type == model.MessageTypeJudge:
		c.Priority = model.PriorityHigh
	case c.Type == model.MessageTypeRun || c.Type == model.MessageTypeUserTestcase:
		c.Priority = model.PriorityMiddle
	default:
		c.Priority = model.PriorityLow
	}
	return c
}
