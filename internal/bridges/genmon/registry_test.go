package genmon

import (
	"sync"
	"testing"
)

func sensorDescriptor(id string) EntityDescriptor {
	return EntityDescriptor{
		ID:          id,
		Name:        "Battery Voltage",
		Component:   "sensor",
		Kind:        ValueNumeric,
		Unit:        "V",
		DeviceClass: "voltage",
		StateTopic:  "generator/status/batteryvoltage",
	}
}

func TestObserveNewEntity(t *testing.T) {
	r := NewRegistry()
	if got := r.Observe(sensorDescriptor("ent-1")); got != PublishNew {
		t.Errorf("Observe() = %v, want %v", got, PublishNew)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestObserveSkipsAfterPublish(t *testing.T) {
	r := NewRegistry()
	d := sensorDescriptor("ent-1")

	r.Observe(d)
	r.MarkPublished(d)

	for i := 0; i < 5; i++ {
		if got := r.Observe(d); got != Skip {
			t.Fatalf("Observe() after publish = %v, want %v", got, Skip)
		}
	}
}

func TestObserveRetriesUntilPublished(t *testing.T) {
	r := NewRegistry()
	d := sensorDescriptor("ent-1")

	// Without MarkPublished the entity is still unannounced; every
	// observation must keep asking for a publish.
	for i := 0; i < 3; i++ {
		if got := r.Observe(d); got != PublishNew {
			t.Fatalf("Observe() without publish = %v, want %v", got, PublishNew)
		}
	}

	r.MarkPublished(d)
	if got := r.Observe(d); got != Skip {
		t.Errorf("Observe() after publish = %v, want %v", got, Skip)
	}
}

func TestObserveUpdateOnFingerprintChange(t *testing.T) {
	r := NewRegistry()
	d := sensorDescriptor("ent-1")

	r.Observe(d)
	r.MarkPublished(d)

	// Same entity seen again with a different value kind.
	changed := d
	changed.Kind = ValueText
	changed.Unit = ""
	changed.DeviceClass = ""

	if got := r.Observe(changed); got != PublishUpdate {
		t.Fatalf("Observe() after change = %v, want %v", got, PublishUpdate)
	}
	r.MarkPublished(changed)

	// The update publishes exactly once.
	if got := r.Observe(changed); got != Skip {
		t.Errorf("Observe() after republish = %v, want %v", got, Skip)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (type change must not mint a new entity)", r.Len())
	}
}

func TestObserveConcurrent(t *testing.T) {
	r := NewRegistry()
	d := sensorDescriptor("ent-1")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Observe(d)
			r.MarkPublished(d)
		}()
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	if got := r.Observe(d); got != Skip {
		t.Errorf("Observe() = %v, want %v", got, Skip)
	}
}

func TestFingerprintCoversDiscoveryFields(t *testing.T) {
	base := sensorDescriptor("ent-1")

	tests := []struct {
		name   string
		mutate func(*EntityDescriptor)
	}{
		{"name", func(d *EntityDescriptor) { d.Name = "Renamed" }},
		{"unit", func(d *EntityDescriptor) { d.Unit = "mV" }},
		{"device class", func(d *EntityDescriptor) { d.DeviceClass = "" }},
		{"value template", func(d *EntityDescriptor) { d.ValueTemplate = "{{ value_json.value }}" }},
		{"kind", func(d *EntityDescriptor) { d.Kind = ValueText }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.mutate(&changed)
			if base.Fingerprint() == changed.Fingerprint() {
				t.Errorf("fingerprint unchanged after %s mutation", tt.name)
			}
		})
	}
}
