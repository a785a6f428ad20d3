package runner_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/eddmann/santa-lang-go/runner"
)

func fixedClock() int64 { return 0 }

var _ = Describe("Run", func() {
	It("treats a program with no part sections as a Script", func() {
		result, err := runner.Run(`1 + 1`, fixedClock)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Script).NotTo(BeNil())
		Expect(result.Script.Value.String()).To(Equal("2"))
	})

	It("evaluates part_one and part_two against the declared input", func() {
		source := `
input: { 3 }
part_one: { input * 2 }
part_two: { input * 3 }
`
		result, err := runner.Run(source, fixedClock)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Solution).NotTo(BeNil())
		Expect(result.Solution.PartOne.Value.String()).To(Equal("6"))
		Expect(result.Solution.PartTwo.Value.String()).To(Equal("9"))
	})

	It("rejects more than one input section", func() {
		source := `
input: { 1 }
input: { 2 }
part_one: { input }
`
		_, err := runner.Run(source, fixedClock)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Test", func() {
	It("passes a test whose expected value matches the part's actual result", func() {
		source := `
part_one: { input * 2 }
test: {
  input: { 3 }
  part_one: { 6 }
}
`
		cases, err := runner.Test(source)
		Expect(err).NotTo(HaveOccurred())
		Expect(cases).To(HaveLen(1))
		Expect(cases[0].PartOne).NotTo(BeNil())
		Expect(cases[0].PartOne.Passed).To(BeTrue())
	})

	It("fails a test whose expected value diverges from the actual result", func() {
		source := `
part_one: { input * 2 }
test: {
  input: { 3 }
  part_one: { 7 }
}
`
		cases, err := runner.Test(source)
		Expect(err).NotTo(HaveOccurred())
		Expect(cases[0].PartOne.Passed).To(BeFalse())
	})
})
