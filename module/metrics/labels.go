package metrics

const (
	LabelHandler   = "handler"
	LabelResult    = "result"
	LabelOperation = "operation"
	LabelState     = "state"
	LabelMethod    = "method"
	LabelRoute     = "route"
)

const (
	HandlerInstantiate = "instantiate"
	HandlerExecute     = "execute"
	HandlerReply       = "reply"
	HandlerSudo        = "sudo"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

func resultLabel(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
