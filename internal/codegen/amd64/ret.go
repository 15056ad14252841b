package amd64

// Ret generates a near return
func (o *Out) Ret() {
	o.begin("ret")
	o.Write(0xC3)
	o.end()
}
