package design

// The on-disk schema. Optional scalars are pointers so defaults can be told
// apart from explicit zero values in both YAML and HCL; gohcl zeroes absent
// attributes instead of leaving them alone.

type fileSpec struct {
	Name     *string       `yaml:"name" hcl:"name,optional"`
	Dir      string        `yaml:"dir" hcl:"dir"`
	Compress *bool         `yaml:"compress" hcl:"compress,optional"`
	HPF      *float64      `yaml:"hpf" hcl:"hpf,optional"`
	Volt     *float64      `yaml:"volt" hcl:"volt,optional"`
	Global   *string       `yaml:"global" hcl:"global,optional"`
	MThres   *float64      `yaml:"mthres" hcl:"mthres,optional"`
	Mask     *string       `yaml:"mask" hcl:"mask,optional"`
	CVI      *string       `yaml:"cvi" hcl:"cvi,optional"`
	Timing   *timingSpec   `yaml:"timing" hcl:"timing,block"`
	Bases    *basesSpec    `yaml:"bases" hcl:"bases,block"`
	Sessions []sessionSpec `yaml:"sessions" hcl:"session,block"`
}

type timingSpec struct {
	Units  *string  `yaml:"units" hcl:"units,optional"`
	RT     *float64 `yaml:"rt" hcl:"rt,optional"`
	FmriT  *float64 `yaml:"fmri_t" hcl:"fmri_t,optional"`
	FmriT0 *float64 `yaml:"fmri_t0" hcl:"fmri_t0,optional"`
}

type basesSpec struct {
	Derivs []int `yaml:"derivs" hcl:"derivs,optional"`
}

type sessionSpec struct {
	Scans      []string        `yaml:"scans" hcl:"scans,optional"`
	ScansGlob  string          `yaml:"scans_glob" hcl:"scans_glob,optional"`
	MultiReg   []string        `yaml:"multi_reg" hcl:"multi_reg,optional"`
	TMod       *int            `yaml:"tmod" hcl:"tmod,optional"`
	Orth       *bool           `yaml:"orth" hcl:"orth,optional"`
	Conditions []conditionSpec `yaml:"conditions" hcl:"condition,block"`
}

type conditionSpec struct {
	Name      string     `yaml:"name" hcl:"name,label"`
	Onsets    []float64  `yaml:"onsets" hcl:"onsets"`
	Durations []float64  `yaml:"durations" hcl:"durations"`
	PMod      []pmodSpec `yaml:"pmod" hcl:"pmod,block"`
}

type pmodSpec struct {
	Name  string    `yaml:"name" hcl:"name,label"`
	Param []float64 `yaml:"param" hcl:"param"`
	Poly  *float64  `yaml:"poly" hcl:"poly,optional"`
}
