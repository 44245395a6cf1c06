package main

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"naql_backend/internal/leads/domain"
	"naql_backend/internal/leads/schema"
	"naql_backend/internal/leads/wizard"
	"naql_backend/platform/phone"
)

var serviceLabels = map[domain.ServiceType]string{
	domain.ServiceWithinCity: "نقل داخل جدة",
	domain.ServiceIntercity:  "نقل من وإلى جدة",
}

var addonLabels = map[domain.AdditionalService]string{
	domain.AddonPacking:  "تغليف",
	domain.AddonAssembly: "فك وتركيب",
	domain.AddonStorage:  "تخزين",
}

var hoistOptions = []domain.HoistNeed{domain.HoistYes, domain.HoistNo, domain.HoistUnknown}

type stepPrompt func(c *wizard.Controller, t *terminal) error

// run drives c until the request is submitted. A step that fails its checks
// is asked again; the notice has already been printed by then.
func run(ctx context.Context, c *wizard.Controller, t *terminal) error {
	prompts := map[int]stepPrompt{
		schema.StepService:  promptService,
		schema.StepPickup:   promptPickup,
		schema.StepDelivery: promptDelivery,
		schema.StepItems:    promptItems,
		schema.StepSchedule: promptSchedule,
	}

	for !c.Closed() {
		if err := ctx.Err(); err != nil {
			return err
		}
		current := c.CurrentStep()
		step := c.Steps()[current]
		t.printf("\n== %s (%d%%) ==\n%s\n", step.Title(), c.Progress(), step.Subtitle())

		if err := prompts[current](c, t); err != nil {
			return err
		}
		printHints(c, t)

		if current == schema.StepSchedule {
			if err := submit(ctx, c, t); err != nil {
				return err
			}
			continue
		}

		if err := c.Advance(); err != nil {
			var stepErr *wizard.StepError
			if errors.As(err, &stepErr) {
				continue
			}
			return err
		}
	}
	return nil
}

// submit sends the record, offering a retry when the server cannot be
// reached. A validation failure moves back to the step that owns the field.
func submit(ctx context.Context, c *wizard.Controller, t *terminal) error {
	for {
		_, err := c.Submit(ctx)
		if err == nil {
			return nil
		}
		var stepErr *wizard.StepError
		if errors.As(err, &stepErr) {
			if stepErr.Step != c.CurrentStep() {
				_ = c.JumpTo(stepErr.Step)
			}
			return nil
		}
		again, cerr := t.confirm("إعادة المحاولة؟")
		if cerr != nil {
			return cerr
		}
		if !again {
			return err
		}
	}
}

func printHints(c *wizard.Controller, t *terminal) {
	for _, s := range c.Suggestions() {
		t.printf("* %s\n", s.Message)
	}
	if price, ok := c.EstimatedPrice(); ok {
		t.printf("السعر التقديري: %s\n", price)
	}
}

func promptService(c *wizard.Controller, t *terminal) error {
	s := c.Service()
	labels := make([]string, len(domain.ServiceTypes))
	for i, st := range domain.ServiceTypes {
		labels[i] = serviceLabels[st]
	}
	i, err := t.choose("نوع الخدمة", labels, false)
	if err != nil {
		return err
	}
	s.Select(domain.ServiceTypes[i])

	for {
		rec := c.Record()
		labels := make([]string, len(domain.AdditionalServices))
		for i, a := range domain.AdditionalServices {
			mark := "[ ]"
			if rec.HasAddon(a) {
				mark = "[x]"
			}
			labels[i] = mark + " " + addonLabels[a]
		}
		i, err := t.choose("خدمة إضافية (Enter للمتابعة)", labels, true)
		if err != nil {
			return err
		}
		if i < 0 {
			return nil
		}
		s.ToggleAddon(domain.AdditionalServices[i])
	}
}

func promptPickup(c *wizard.Controller, t *terminal) error {
	s := c.Pickup()

	city, err := t.ask("مدينة الاستلام (Enter = " + c.Record().FromCity + ")")
	if err != nil {
		return err
	}
	if city != "" {
		s.SetCity(city)
	}

	district, err := pickDistrict(t, "حي الاستلام", s.Districts())
	if err != nil {
		return err
	}
	s.SetDistrict(district)

	labels := make([]string, len(domain.PlaceTypes))
	for i, p := range domain.PlaceTypes {
		labels[i] = string(p)
	}
	i, err := t.choose("نوع المكان", labels, false)
	if err != nil {
		return err
	}
	s.SetPlaceType(domain.PlaceTypes[i])

	floor, err := t.ask("الطابق (اختياري)")
	if err != nil {
		return err
	}
	s.SetFloor(floor)

	elevator, err := t.confirm("هل يوجد مصعد؟")
	if err != nil {
		return err
	}
	s.SetElevator(yesNo(elevator))
	return nil
}

func promptDelivery(c *wizard.Controller, t *terminal) error {
	s := c.Delivery()

	if c.Record().ServiceType != domain.ServiceWithinCity {
		city, err := t.ask("مدينة التسليم")
		if err != nil {
			return err
		}
		s.SetCity(city)
	}

	district, err := pickDistrict(t, "حي التسليم", s.Districts())
	if err != nil {
		return err
	}
	s.SetDistrict(district)

	floor, err := t.ask("الطابق (اختياري)")
	if err != nil {
		return err
	}
	s.SetFloor(floor)

	elevator, err := t.confirm("هل يوجد مصعد؟")
	if err != nil {
		return err
	}
	s.SetElevator(yesNo(elevator))
	return nil
}

func promptItems(c *wizard.Controller, t *terminal) error {
	s := c.Items()

	i, err := t.choose("نوع المنقولات", []string{"أثاث كامل", "عناصر محددة"}, false)
	if err != nil {
		return err
	}
	if i == 0 {
		s.SetItemsType(domain.ItemsCompleteFurniture)
	} else {
		s.SetItemsType(domain.ItemsSpecific)
		if err := promptCatalog(s, t); err != nil {
			return err
		}
	}

	i, err = t.choose("هل تحتاج رافعة؟", []string{"نعم", "لا", "غير متأكد"}, false)
	if err != nil {
		return err
	}
	s.SetHoist(hoistOptions[i])
	return nil
}

// promptCatalog adds one unit per answered number. A leading minus removes
// one unit instead.
func promptCatalog(s *wizard.ItemsStep, t *terminal) error {
	for {
		catalog := s.Catalog()
		for i, item := range catalog {
			t.printf("  %d) %s (%d)\n", i+1, item.Item, item.Quantity)
		}
		ans, err := t.ask("رقم العنصر لإضافته، أو -رقم للإزالة (Enter للمتابعة)")
		if err != nil {
			return err
		}
		if ans == "" {
			return nil
		}
		remove := strings.HasPrefix(ans, "-")
		n, err := strconv.Atoi(strings.TrimPrefix(phone.DigitsToASCII(ans), "-"))
		if err != nil || n < 1 || n > len(catalog) {
			t.printf("اختيار غير صالح\n")
			continue
		}
		if remove {
			s.Decrement(catalog[n-1].Item)
		} else {
			s.Increment(catalog[n-1].Item)
		}
	}
}

func promptSchedule(c *wizard.Controller, t *terminal) error {
	s := c.Schedule()

	dates := s.AvailableDates()
	i, err := t.choose("الموعد المفضل", dates, false)
	if err != nil {
		return err
	}
	s.SetDate(dates[i])

	name, err := t.ask("الاسم")
	if err != nil {
		return err
	}
	s.SetName(name)

	mobile, err := t.ask("رقم الجوال")
	if err != nil {
		return err
	}
	s.SetPhone(mobile)

	optIn, err := t.confirm("التواصل عبر واتساب؟")
	if err != nil {
		return err
	}
	s.SetWhatsAppOptIn(optIn)

	notes, err := t.ask("ملاحظات (اختياري)")
	if err != nil {
		return err
	}
	s.SetNotes(notes)
	return nil
}

// pickDistrict offers the fixed list when there is one and free text
// otherwise.
func pickDistrict(t *terminal, prompt string, districts []string) (string, error) {
	if len(districts) == 0 {
		return t.ask(prompt)
	}
	i, err := t.choose(prompt, districts, false)
	if err != nil {
		return "", err
	}
	return districts[i], nil
}

func yesNo(v bool) domain.YesNo {
	if v {
		return domain.Yes
	}
	return domain.No
}
