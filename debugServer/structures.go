package debugServer

type ExpressionParams struct {
	Expression string `json:"expression"`
}

type EvaluateResult struct {
	Value uint32 `json:"value"`
}

type WatchResult struct {
	ID int `json:"id"`
}

type UnwatchParams struct {
	ID int `json:"id"`
}

type WatchpointInfo struct {
	ID    int    `json:"id"`
	Expr  string `json:"expr"`
	Value uint32 `json:"value"`
}

type StepParams struct {
	Count uint64 `json:"count"`
}

type ExecParams struct {
	Line string `json:"line"`
}

// RunResult describes the machine after a command that may have run it.
type RunResult struct {
	Output string `json:"output"`
	State  string `json:"state"`
	PC     uint32 `json:"pc"`
}

type WatchpointHitParams struct {
	ID   int    `json:"id"`
	Expr string `json:"expr"`
	Old  uint32 `json:"old"`
	New  uint32 `json:"new"`
}

// messages of the web console

type ConsoleMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type WatchpointMessage struct {
	Type string `json:"type"`
	WatchpointHitParams
}
