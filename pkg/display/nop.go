package display

import "hds/pkg/common"

// NewNop returns a Display that discards everything written to it.
func NewNop() Display { return nopDisplay{} }

// NopTask is a Task that ignores every call.
var NopTask Task = nopTask{}

type nopDisplay struct{}

func (nopDisplay) StartTask(string) Task       { return nopTask{} }
func (nopDisplay) Log(string)                  {}
func (nopDisplay) Print(string)                {}
func (nopDisplay) RenderOutput(*common.Output) {}
func (nopDisplay) SetVerbose(bool)             {}
func (nopDisplay) Close()                      {}

type nopTask struct{}

func (nopTask) Log(string)              {}
func (nopTask) SetStage(string, string) {}
func (nopTask) Progress(int, string)    {}
func (nopTask) Done()                   {}
