package director

// BootstrapParams are the values substituted into the director template.
type BootstrapParams struct {
	AccessKeyID        string
	SecretAccessKey    string
	Region             string
	StackName          string
	Owner              string
	KeyName            string
	SubnetID           string
	SecurityGroupIDs   string
	Image              string
	NumWorkers         int
	WorkerInstanceType string
}

// Params returns the placeholder map for p.
func (p BootstrapParams) Params() Params {
	return Params{
		"accessKeyId":          p.AccessKeyID,
		"secretAccessKey":      p.SecretAccessKey,
		"region":               p.Region,
		"stack_name":           p.StackName,
		"owner":                p.Owner,
		"keyName":              p.KeyName,
		"subnetId":             p.SubnetID,
		"securityGroupsIds":    p.SecurityGroupIDs,
		"image":                p.Image,
		"num_workers":          p.NumWorkers,
		"worker_instance_type": p.WorkerInstanceType,
	}
}

// RenderBootstrap renders tmpl with p.
func RenderBootstrap(tmpl string, p BootstrapParams) (string, error) {
	return Render(tmpl, p.Params())
}
