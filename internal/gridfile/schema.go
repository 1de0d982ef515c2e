package gridfile

import "github.com/zclconf/go-cty/cty"

// workflowBlock is the single `workflow "<name>" {}` block of a grid file.
type workflowBlock struct {
	Name   string    `hcl:"name,label"`
	Engine string    `hcl:"engine,optional"`
	Data   cty.Value `hcl:"data,optional"`
}

// jobBlock is one `job "<id>" {}` block.
type jobBlock struct {
	ID       string    `hcl:"id,label"`
	Inputs   []string  `hcl:"inputs,optional"`
	Outputs  []string  `hcl:"outputs,optional"`
	Template string    `hcl:"template,optional"`
	Data     cty.Value `hcl:"data,optional"`
}

// gridFile is the top-level structure of a grid file.
type gridFile struct {
	Workflow *workflowBlock `hcl:"workflow,block"`
	Jobs     []*jobBlock    `hcl:"job,block"`
}
