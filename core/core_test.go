package core_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tacvm/core"
)

var _ = Describe("Core", func() {
	var (
		engine sim.Engine
		stdout *bytes.Buffer
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		stdout = &bytes.Buffer{}
	})

	build := func(code string) *core.Core {
		return core.NewBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithStdout(stdout).
			BuildCore("Core", mustLoad(code))
	}

	It("should run the program on the engine", func() {
		c := build(".IFJcode17\nDEFVAR GF@a\nMOVE GF@a int@5\nWRITE GF@a\n")

		c.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(c.Err()).NotTo(HaveOccurred())
		Expect(stdout.String()).To(Equal("5"))
		Expect(c.State().ExecutedInstructions).To(Equal(3))
	})

	It("should be busy for as many cycles as the price", func() {
		c := build(".IFJcode17\nDEFVAR GF@a\nMOVE GF@a int@5\nWRITE GF@a\n")

		c.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(c.Cycles()).To(Equal(c.State().Price()))
		Expect(c.FinishedAt()).To(BeNumerically(">", 0))
	})

	It("should spend at least one cycle on free instructions", func() {
		c := build(".IFJcode17\nLABEL a\nLABEL b\n")

		c.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(c.State().Price()).To(Equal(0))
		Expect(c.Cycles()).To(Equal(2))
	})

	It("should halt on a runtime error", func() {
		c := build(".IFJcode17\nPOPS GF@a\nWRITE int@1\n")

		c.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(c.Err()).To(MatchError(core.ErrEmptyDataStack))
		Expect(stdout.String()).To(BeEmpty())
	})
})
