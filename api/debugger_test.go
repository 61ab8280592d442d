package api

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tacvm/core"
)

const straightProgram = `.IFJcode17
DEFVAR GF@a
MOVE GF@a int@1
WRITE GF@a
WRITE int@2
`

const callProgram = `.IFJcode17
CALL fn
JUMP end
LABEL fn
WRITE int@1
RETURN
LABEL end
`

var _ = Describe("Debugger", func() {
	var (
		stdout *bytes.Buffer
		d      *Debugger
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		d = NewDebugger(core.NewBuilder().WithStdout(stdout))
	})

	It("should start idle", func() {
		Expect(d.Status()).To(Equal(StatusIdle))
		Expect(d.Line()).To(Equal(-1))
		Expect(d.RunToNextLine()).To(MatchError(ErrNotActive))
	})

	It("should run to the first breakpoint", func() {
		Expect(d.Debug(straightProgram, []int{4})).To(Succeed())

		Expect(d.Status()).To(Equal(StatusPaused))
		Expect(d.Line()).To(Equal(4))
		Expect(d.State().ExecutedInstructions).To(Equal(2))
		Expect(stdout.String()).To(BeEmpty())
		Expect(d.ProgramLine(1)).To(Equal(3))
	})

	It("should run to breakpoints and single lines", func() {
		Expect(d.Debug(straightProgram, []int{4})).To(Succeed())

		Expect(d.RunToNextLine()).To(Succeed())
		Expect(d.Line()).To(Equal(5))
		Expect(stdout.String()).To(Equal("1"))

		Expect(d.RunToNextBreakpoint()).To(Succeed())
		Expect(d.Status()).To(Equal(StatusEnded))
		Expect(stdout.String()).To(Equal("12"))

		Expect(d.RunToNextLine()).To(MatchError(ErrNotActive))
	})

	It("should end when the breakpoint is never reached", func() {
		Expect(d.Debug(straightProgram, []int{99})).To(Succeed())

		Expect(d.Status()).To(Equal(StatusEnded))
		Expect(d.Err()).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("12"))
		Expect(d.RunToNextBreakpoint()).To(MatchError(ErrNotActive))
	})

	It("should stop on a breakpoint at the first instruction", func() {
		Expect(d.Debug(straightProgram, []int{2})).To(Succeed())

		Expect(d.Status()).To(Equal(StatusPaused))
		Expect(d.Line()).To(Equal(2))
		Expect(d.State().ExecutedInstructions).To(Equal(0))

		Expect(d.RunToNextBreakpoint()).To(Succeed())
		Expect(d.Status()).To(Equal(StatusEnded))
	})

	It("should end with the runtime error", func() {
		err := d.Debug(".IFJcode17\nWRITE int@1\nPOPS GF@a\n", nil)

		Expect(err).To(MatchError(core.ErrEmptyDataStack))
		Expect(d.Status()).To(Equal(StatusEnded))
		Expect(d.Err()).To(MatchError(core.ErrEmptyDataStack))
		Expect(stdout.String()).To(Equal("1"))
	})

	It("should end with the load error", func() {
		err := d.Debug("WRITE int@1\n", nil)

		Expect(err).To(MatchError(core.ErrMissingHeader))
		Expect(d.Status()).To(Equal(StatusEnded))
		Expect(d.Session()).To(BeNil())
	})

	It("should stop a paused session", func() {
		Expect(d.Debug(straightProgram, []int{3})).To(Succeed())

		d.Stop()

		Expect(d.Status()).To(Equal(StatusStopped))
		Expect(d.Line()).To(Equal(-1))
		Expect(d.RunToNextLine()).To(MatchError(ErrNotActive))
	})

	It("should run without breakpoints", func() {
		d.SetBreakpoints([]int{3})

		state, err := d.Run(straightProgram)

		Expect(err).NotTo(HaveOccurred())
		Expect(state.ExecutedInstructions).To(Equal(4))
		Expect(stdout.String()).To(Equal("12"))
		Expect(d.Status()).To(Equal(StatusEnded))
	})

	It("should model the call stack", func() {
		Expect(d.Debug(callProgram, []int{5})).To(Succeed())

		Expect(d.CallStack()).To(Equal([]CallStackEntry{
			{Line: 5, Label: ""},
			{Line: 2, Label: "fn"},
		}))
	})

	It("should keep breakpoints sorted", func() {
		d.AddBreakpoint(9)
		d.AddBreakpoint(3)
		d.AddBreakpoint(3)
		d.RemoveBreakpoint(7)

		Expect(d.Breakpoints()).To(Equal([]int{3, 9}))
		Expect(d.HasBreakpoint(9)).To(BeTrue())
	})
})
