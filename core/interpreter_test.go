package core_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tacvm/core"
	"github.com/sarchlab/tacvm/instr"
)

func mustLoad(code string) *core.Program {
	p, err := core.LoadProgram(code)
	Expect(err).NotTo(HaveOccurred())

	return p
}

var _ = Describe("Program", func() {
	It("should skip comments and blank lines", func() {
		p := mustLoad(".IFJcode17 # header\n\n# only a comment\nWRITE int@1\n")

		Expect(p.Len()).To(Equal(1))
		Expect(p.Line(0)).To(Equal(4))
		Expect(p.Line(1)).To(Equal(-1))
	})

	It("should accept the header in any case", func() {
		_, err := core.LoadProgram(".ifjCODE17\n")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should reject empty code", func() {
		_, err := core.LoadProgram("  \n# nothing\n")
		Expect(err).To(MatchError(core.ErrEmptyCode))
	})

	It("should reject a missing header", func() {
		_, err := core.LoadProgram("WRITE int@1\n")
		Expect(err).To(MatchError(core.ErrMissingHeader))

		var lineErr *instr.LineError
		Expect(errors.As(err, &lineErr)).To(BeTrue())
		Expect(lineErr.Line).To(Equal(1))
	})

	It("should report the failing line", func() {
		_, err := core.LoadProgram(".IFJcode17\nWRITE int@1\nFROB GF@a\n")
		Expect(err).To(MatchError(instr.ErrUnknownInstruction))

		var lineErr *instr.LineError
		Expect(errors.As(err, &lineErr)).To(BeTrue())
		Expect(lineErr.Line).To(Equal(3))
	})

	It("should keep the first definition of a label", func() {
		p := mustLoad(".IFJcode17\nLABEL a\nLABEL b\nLABEL a\n")

		Expect(p.Labels).To(Equal(map[string]int{"a": 0, "b": 1}))
	})
})

var _ = Describe("Interpreter", func() {
	var (
		stdout *bytes.Buffer
		stderr *bytes.Buffer
		stdin  string
	)

	BeforeEach(func() {
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		stdin = ""
	})

	run := func(code string) (*core.State, error) {
		interp := core.NewBuilder().
			WithStdout(stdout).
			WithStderr(stderr).
			WithStdin(strings.NewReader(stdin)).
			WithMaxSteps(10000).
			Build(mustLoad(code))

		return interp.Run(context.Background())
	}

	It("should compute and write", func() {
		state, err := run(`.IFJcode17
DEFVAR GF@a
MOVE GF@a int@5
ADD GF@a GF@a int@3
WRITE GF@a
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("8"))
		Expect(state.ExecutedInstructions).To(Equal(4))
		Expect(state.InstructionPrice).To(Equal(1 + 1 + 4 + 4))
		Expect(state.OperandPrice).To(Equal(4 + (4 + 1) + (4 + 1 + 4) + 4))
	})

	It("should compute on the data stack", func() {
		state, err := run(`.IFJcode17
DEFVAR GF@x
MOVE GF@x int@5
PUSHS GF@x
PUSHS int@3
ADDS
POPS GF@x
WRITE GF@x
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("8"))
		Expect(state.DataStack).To(BeEmpty())
		Expect(state.ExecutedInstructions).To(Equal(7))
	})

	DescribeTable("should move a value through the data stack unchanged",
		func(literal string, want instr.Value) {
			state, err := run(".IFJcode17\nDEFVAR GF@v\nPUSHS " + literal + "\nPOPS GF@v\n")
			Expect(err).NotTo(HaveOccurred())

			v, ok := state.GlobalFrame.Lookup("v")
			Expect(ok).To(BeTrue())
			Expect(v.Defined).To(BeTrue())
			Expect(v.Value).To(Equal(want))
			Expect(state.DataStack).To(BeEmpty())
		},
		Entry("bool", "bool@TRUE", instr.Bool(true)),
		Entry("int", "int@-42", instr.Int(-42)),
		Entry("float", "float@-2.5", instr.Float(-2.5)),
		Entry("string", "string@hello", instr.String("hello")),
		Entry("escaped string", `string@a\032b\035c\092`, instr.String("a b#c\\")),
		Entry("empty string", "string@", instr.String("")),
	)

	It("should loop with conditional jumps", func() {
		_, err := run(`.IFJcode17
DEFVAR GF@i
MOVE GF@i int@0
LABEL loop
WRITE GF@i
ADD GF@i GF@i int@1
JUMPIFNEQ loop GF@i int@3
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("012"))
	})

	It("should call functions with local frames", func() {
		_, err := run(`.IFJcode17
JUMP main
LABEL double
PUSHFRAME
DEFVAR LF@out
MUL LF@out LF@in int@2
PUSHS LF@out
POPFRAME
RETURN
LABEL main
CREATEFRAME
DEFVAR TF@in
MOVE TF@in int@21
CALL double
DEFVAR GF@r
POPS GF@r
WRITE GF@r
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("42"))
	})

	It("should report an unknown call target with its line", func() {
		state, err := run(".IFJcode17\nWRITE int@1\nCALL missing\nWRITE int@2\n")

		Expect(err).To(MatchError(core.ErrUnknownLabel))
		var lineErr *instr.LineError
		Expect(errors.As(err, &lineErr)).To(BeTrue())
		Expect(lineErr.Line).To(Equal(3))
		Expect(stdout.String()).To(Equal("1"))
		Expect(state.ExecutedInstructions).To(Equal(1))
	})

	It("should stop at the step limit", func() {
		_, err := run(".IFJcode17\nLABEL spin\nJUMP spin\n")

		Expect(err).To(MatchError(core.ErrStepLimit))
	})

	It("should read from the input", func() {
		stdin = "20\n"

		_, err := run(`.IFJcode17
DEFVAR GF@n
READ GF@n int
INT2FLOAT GF@n GF@n
DIV GF@n GF@n float@8.0
WRITE GF@n
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("2.5"))
	})

	It("should produce the same price on every run", func() {
		code := `.IFJcode17
DEFVAR GF@x
MOVE GF@x string@abc
STRLEN GF@x GF@x
PUSHS GF@x
PUSHS int@1
ADDS
POPS GF@x
GROOT
`
		first, err := run(code)
		Expect(err).NotTo(HaveOccurred())

		second, err := run(code)
		Expect(err).NotTo(HaveOccurred())

		Expect(second.Price()).To(Equal(first.Price()))
		Expect(stderr.String()).To(ContainSubstring("Price: "))
	})

	Describe("Session", func() {
		It("should advance one instruction at a time", func() {
			s := core.NewBuilder().
				WithStdout(stdout).
				Build(mustLoad(".IFJcode17\nWRITE int@1\n\nWRITE int@2\n")).
				NewSession()

			Expect(s.Line()).To(Equal(2))
			Expect(s.State().ProgramLine).To(Equal(2))

			Expect(s.Step()).To(Succeed())
			Expect(s.Line()).To(Equal(4))
			Expect(stdout.String()).To(Equal("1"))

			Expect(s.Step()).To(Succeed())
			Expect(s.Done()).To(BeTrue())
			Expect(s.Line()).To(Equal(-1))
		})

		It("should stop before the next instruction", func() {
			s := core.NewBuilder().
				WithStdout(stdout).
				Build(mustLoad(".IFJcode17\nWRITE int@1\nWRITE int@2\n")).
				NewSession()

			Expect(s.Step()).To(Succeed())
			s.Stop()

			Expect(s.Done()).To(BeTrue())
			Expect(s.Step()).To(Succeed())
			Expect(stdout.String()).To(Equal("1"))
		})

		It("should honour context cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			s := core.NewBuilder().
				Build(mustLoad(".IFJcode17\nLABEL spin\nJUMP spin\n")).
				NewSession()

			Expect(s.Run(ctx)).To(MatchError(context.Canceled))
		})
	})
})
